package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheHeader reports whether a response was served from the cache.
const CacheHeader = "X-Cache"

type cachedPage struct {
	status      int
	contentType string
	body        []byte
}

// recordingWriter tees the response body so it can be stored.
type recordingWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w recordingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w recordingWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves GET responses from store for ttl. Only successful responses
// are kept. Use it only on routes whose response is the same for every
// caller.
func Cache(store *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if v, ok := store.Get(key); ok {
			page := v.(cachedPage)
			c.Header(CacheHeader, "HIT")
			c.Data(page.status, page.contentType, page.body)
			c.Abort()
			return
		}

		c.Header(CacheHeader, "MISS")
		rw := recordingWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = rw
		c.Next()

		if status := rw.Status(); status >= 200 && status < 300 {
			store.Set(key, cachedPage{
				status:      status,
				contentType: rw.Header().Get("Content-Type"),
				body:        rw.buf.Bytes(),
			}, ttl)
		}
	}
}
