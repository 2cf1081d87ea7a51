package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter_Allow(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return clock }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("expected first two requests allowed")
	}
	if rl.Allow("a") {
		t.Error("expected third request rejected")
	}
	if !rl.Allow("b") {
		t.Error("expected other key unaffected")
	}

	// Two per minute refills one token every 30s.
	clock = clock.Add(29 * time.Second)
	if rl.Allow("a") {
		t.Error("expected no token before 30s")
	}

	clock = clock.Add(2 * time.Second)
	if !rl.Allow("a") {
		t.Error("expected one token after 30s")
	}
	if rl.Allow("a") {
		t.Error("expected only one token refilled")
	}
}

func TestRateLimiter_CleanupDropsIdleVisitors(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Minute)
	rl.now = func() time.Time { return clock }
	rl.lastCleanup = clock

	rl.Allow("idle")
	clock = clock.Add(4 * time.Minute)
	rl.Allow("active")

	if _, ok := rl.visitors["idle"]; ok {
		t.Error("expected idle visitor removed")
	}
	if _, ok := rl.visitors["active"]; !ok {
		t.Error("expected active visitor kept")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, time.Hour).Middleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != want {
			t.Errorf("request %d: expected %d, got %d", i, want, w.Code)
		}
	}
}

func TestBrotli(t *testing.T) {
	large := strings.Repeat("exam prep ", 500)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/large", func(c *gin.Context) {
		// Two writes: the second is below the threshold on its own.
		c.Writer.WriteString(large)
		c.Writer.WriteString("tail")
	})
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "tiny") })

	t.Run("compresses large bodies completely", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/large", nil)
		req.Header.Set("Accept-Encoding", "gzip, br")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Header().Get("Content-Encoding") != "br" {
			t.Fatalf("expected br encoding, got %q", w.Header().Get("Content-Encoding"))
		}
		body, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		if string(body) != large+"tail" {
			t.Errorf("expected round trip of %d bytes, got %d", len(large)+4, len(body))
		}
	})

	t.Run("leaves small bodies plain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/small", nil)
		req.Header.Set("Accept-Encoding", "br")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Header().Get("Content-Encoding") != "" {
			t.Errorf("expected no encoding, got %q", w.Header().Get("Content-Encoding"))
		}
		if w.Body.String() != "tiny" {
			t.Errorf("expected plain body, got %q", w.Body.String())
		}
	})

	t.Run("skips clients without br", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/large", nil))
		if w.Header().Get("Content-Encoding") != "" || w.Body.Len() != len(large)+4 {
			t.Errorf("expected uncompressed body")
		}
	})
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.Use(NoStore())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected no-store, got %q", got)
	}
}
