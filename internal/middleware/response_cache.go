package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/cache"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/metrics"
	"github.com/cardfeed/backend/internal/util"
)

// ResponseCache caches successful GET responses in redis for ttl.
// Only 2xx responses are stored. X-Cache reports HIT or MISS.
// Keys follow cache.ResponseKey so mutations can invalidate them; a nil
// client disables caching.
func ResponseCache(client *cache.RedisClient, ttl time.Duration) gin.HandlerFunc {
	cacheControl := fmt.Sprintf("private, max-age=%d", int(ttl.Seconds()))

	return func(c *gin.Context) {
		if client == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		cacheKey := cache.ResponseKey(c.Request.URL.Path, c.Request.URL.RawQuery, c.GetString(util.ContextUserIDKey))
		ctx := c.Request.Context()

		startTime := time.Now()
		cachedData, err := client.Get(ctx, cacheKey)
		metrics.RecordCacheOperation("GET", cache.ResponseCacheName, time.Since(startTime))

		if err == nil {
			metrics.RecordCacheHit(cache.ResponseCacheName)
			logger.Log.Debug("Cache hit", zap.String("key", cacheKey))
			c.Header("X-Cache", "HIT")
			c.Header("Cache-Control", cacheControl)
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cachedData))
			c.Abort()
			return
		}
		metrics.RecordCacheMiss(cache.ResponseCacheName)

		writer := &cachedResponseWriter{
			ResponseWriter: c.Writer,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer
		c.Header("X-Cache", "MISS")
		c.Header("Cache-Control", cacheControl)

		c.Next()

		if writer.statusCode < 200 || writer.statusCode >= 300 || writer.body.Len() == 0 {
			return
		}

		setStartTime := time.Now()
		if err := client.SetEx(ctx, cacheKey, writer.body.String(), ttl); err != nil {
			logger.Log.Debug("Failed to write response to cache",
				zap.String("key", cacheKey),
				zap.Error(err),
			)
			return
		}
		metrics.RecordCacheOperation("SET", cache.ResponseCacheName, time.Since(setStartTime))
		logger.Log.Debug("Response cached",
			zap.String("key", cacheKey),
			zap.Duration("ttl", ttl),
			zap.Int("size_bytes", writer.body.Len()),
		)
	}
}

// cachedResponseWriter intercepts response writes to capture the response body
type cachedResponseWriter struct {
	gin.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (w *cachedResponseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *cachedResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func (w *cachedResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
