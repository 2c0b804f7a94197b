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

// CookieOptions controls the session cookie written on register and login.
type CookieOptions struct {
	Name   string
	Secure bool
}

// AuthHandler handles register, login and logout.
type AuthHandler struct {
	sessions *auth.Store
	userSvc  *service.UserService
	cookie   CookieOptions
	log      *zap.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions *auth.Store, userSvc *service.UserService, cookie CookieOptions, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, userSvc: userSvc, cookie: cookie, log: log}
}

// Register godoc
// @Summary      Register a user and log them in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterRequest  true  "Username, optional email, password"
// @Success      201   {object}  dto.MessageResponse
// @Failure      400   {object}  map[string][]string
// @Failure      500   {object}  map[string]string
// @Router       /register/ [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			fieldError(c, "username", "A user with that username already exists.")
		case errors.Is(err, service.ErrPasswordTooLong):
			fieldError(c, "password", "Ensure this field has no more than 72 bytes.")
		case errors.Is(err, service.ErrInvalidCredentials):
			fieldError(c, "username", "This field may not be blank.")
		default:
			internalError(c, h.log, "register", err)
		}
		return
	}
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusCreated, dto.MessageResponse{Message: "User registered successfully."})
}

// Login godoc
// @Summary      Log in with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.MessageResponse
// @Failure      400   {object}  map[string][]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password."})
			return
		}
		internalError(c, h.log, "login", err)
		return
	}
	if old := auth.SessionFromContext(c); old.ID != "" {
		if err := h.sessions.Delete(c.Request.Context(), old.ID); err != nil {
			h.log.Warn("drop previous session", zap.Error(err))
		}
	}
	if !h.startSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged in."})
}

// Logout godoc
// @Summary      Log out and forget the session
// @Tags         auth
// @Success      204
// @Router       /logout/ [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := auth.SessionFromContext(c); sess.ID != "" {
		if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
			h.log.Warn("delete session", zap.Error(err))
		}
	}
	h.setCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) startSession(c *gin.Context, userID int64) bool {
	sess, err := h.sessions.Create(c.Request.Context(), userID)
	if err != nil {
		internalError(c, h.log, "create session", err)
		return false
	}
	auth.WithSession(c, sess)
	h.setCookie(c, sess.ID, int(h.sessions.TTL().Seconds()))
	return true
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
