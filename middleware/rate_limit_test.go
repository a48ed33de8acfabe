package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimitEventuallyRejects(t *testing.T) {
	router := gin.New()
	router.GET("/limited", RateLimitMiddleware(), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	// Default config allows a burst of half the per-minute budget; well past
	// that the bucket must be empty.
	var rejected bool
	for i := 0; i < 200; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			rejected = true
			break
		}
	}
	if !rejected {
		t.Error("no request was rate limited after exhausting the bucket")
	}
}

func TestRateLimitSeparatesUsers(t *testing.T) {
	router := gin.New()
	router.GET("/limited", func(ctx *gin.Context) {
		ctx.Set(ContextUserIDKey, uint(777))
	}, RateLimitMiddleware(), func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	// A fresh user key starts with a full bucket regardless of IP history.
	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
