package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPRecorder receives one observation per request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, statusCode int, d time.Duration)
}

// Metrics records request counts and latencies.  The route template is
// used as the path label so that IDs do not explode cardinality; requests
// that matched no route are labelled "unmatched".
func Metrics(rec HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		rec.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// BodyLimit caps request bodies at maxBytes.  Reads past the limit fail and
// surface as a bind error in the handler.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

//Personal.AI order the ending
