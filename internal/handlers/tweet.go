package handlers

import (
	"errors"
	"net/http"

	"github.com/swoyamsuwal/django-twitter/internal/auth"
	"github.com/swoyamsuwal/django-twitter/internal/dto"
	"github.com/swoyamsuwal/django-twitter/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TweetHandler struct {
	svc *service.TweetService
	log *zap.Logger
}

func NewTweetHandler(svc *service.TweetService, log *zap.Logger) *TweetHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TweetHandler{svc: svc, log: log}
}

// List godoc
// @Summary      List all tweets, newest first
// @Tags         tweets
// @Produce      json
// @Success      200  {array}   dto.TweetResponse
// @Failure      500  {object}  map[string]string
// @Router       / [get]
func (h *TweetHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		internalError(c, h.log, "list tweets", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTweetResponses(list))
}

// Detail godoc
// @Summary      Get a tweet by ID
// @Tags         tweets
// @Produce      json
// @Param        id   path      int  true  "Tweet ID"
// @Success      200  {object}  dto.TweetResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tweets/{id}/ [get]
func (h *TweetHandler) Detail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get tweet", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTweetResponse(t))
}

// Create godoc
// @Summary      Create a tweet as the logged-in user
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.TweetRequest  true  "Tweet body"
// @Success      201   {object}  dto.TweetResponse
// @Failure      400   {object}  map[string][]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tweets/create/ [post]
func (h *TweetHandler) Create(c *gin.Context) {
	var req dto.TweetRequest
	if !bindJSON(c, &req) {
		return
	}
	sess := auth.SessionFromContext(c)
	t, err := h.svc.Create(c.Request.Context(), sess.UserID, service.TweetInput{Text: *req.Text, Image: req.Image})
	if err != nil {
		h.fail(c, "create tweet", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTweetResponse(t))
}

// Update godoc
// @Summary      Replace a tweet's text and image
// @Tags         tweets
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      int               true  "Tweet ID"
// @Param        body  body      dto.TweetRequest  true  "Full replacement"
// @Success      200   {object}  dto.TweetResponse
// @Failure      400   {object}  map[string][]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /tweets/{id}/update/ [put]
func (h *TweetHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sess := auth.SessionFromContext(c)
	// The tweet must exist and be editable before the body is looked at.
	if _, err := h.svc.Authorize(c.Request.Context(), sess.UserID, id); err != nil {
		h.fail(c, "authorize tweet update", err)
		return
	}
	var req dto.TweetRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.svc.Update(c.Request.Context(), sess.UserID, id, service.TweetInput{Text: *req.Text, Image: req.Image})
	if err != nil {
		h.fail(c, "update tweet", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTweetResponse(t))
}

// Delete godoc
// @Summary      Delete a tweet
// @Tags         tweets
// @Security     CookieAuth
// @Param        id   path  int  true  "Tweet ID"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /tweets/{id}/delete/ [delete]
func (h *TweetHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sess := auth.SessionFromContext(c)
	if err := h.svc.Delete(c.Request.Context(), sess.UserID, id); err != nil {
		h.fail(c, "delete tweet", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search godoc
// @Summary      Search tweets by text, ignoring case
// @Tags         tweets
// @Produce      json
// @Param        search  query     string  false  "Substring to look for"
// @Success      200     {array}   dto.TweetResponse
// @Failure      500     {object}  map[string]string
// @Router       /search/ [get]
func (h *TweetHandler) Search(c *gin.Context) {
	list, err := h.svc.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		internalError(c, h.log, "search tweets", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTweetResponses(list))
}

func (h *TweetHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, notFoundBody)
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
	case errors.Is(err, service.ErrBlankText):
		fieldError(c, "text", "This field may not be blank.")
	case errors.Is(err, service.ErrUnknownAuthor):
		fieldError(c, "user", "Invalid pk - object does not exist.")
	default:
		internalError(c, h.log, op, err)
	}
}
