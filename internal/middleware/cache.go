package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yatube/internal/repository"
	"yatube/pkg/logging"
)

type bodyWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage serves anonymous GETs from cache for ttl. Entries are keyed by
// the request URI and only leave the cache on expiry or an explicit Clear.
func CachePage(cache repository.PageCache, ttl time.Duration) gin.HandlerFunc {
	log := logging.WithComponent("page_cache")
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		body, hit, err := cache.Get(c.Request.Context(), key)
		if err != nil {
			log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			c.Abort()
			return
		}

		w := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK {
			return
		}
		if err := cache.Set(c.Request.Context(), key, w.buf.Bytes(), ttl); err != nil {
			log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
}
