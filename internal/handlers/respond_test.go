package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/swoyamsuwal/django-twitter/internal/dto"
	"github.com/swoyamsuwal/django-twitter/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseIDRejectsNonPositive(t *testing.T) {
	r := gin.New()
	r.GET("/t/:id/", func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, want := range map[string]int{
		"/t/7/":   http.StatusOK,
		"/t/0/":   http.StatusNotFound,
		"/t/-3/":  http.StatusNotFound,
		"/t/abc/": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, want, rec.Code, path)
	}
}

func TestBindJSON(t *testing.T) {
	dto.RegisterValidators()
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req dto.TweetRequest
		if !bindJSON(c, &req) {
			return
		}
		c.Status(http.StatusNoContent)
	})
	send := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusNoContent, send(`{"text":"ok"}`).Code)

	rec := send(`{"image":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"text":["This field is required."]}`, rec.Body.String())

	rec = send(`not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"detail":"JSON parse error - `)
}

func TestTweetFailMapping(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := NewTweetHandler(nil, zap.New(core))

	cases := []struct {
		err  error
		code int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrUnauthenticated, http.StatusUnauthorized},
		{service.ErrBlankText, http.StatusBadRequest},
		{service.ErrUnknownAuthor, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		h.fail(c, "op", tc.err)
		require.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "op", entry.Message)
	require.Equal(t, "connection reset", entry.ContextMap()["error"])
}
