package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/rigshop/internal/server/http/dto"
)

type inflatedBody struct {
	*gzip.Reader
	raw io.ReadCloser
}

func (b inflatedBody) Close() error {
	_ = b.Reader.Close()
	return b.raw.Close()
}

func isGzip(c *gin.Context) bool {
	encoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding")))
	return encoding == "gzip" || encoding == "x-gzip"
}

// DecompressRequest inflates gzip encoded request bodies and caps every body
// at maxBytes after inflation. A non-positive maxBytes disables the cap.
func DecompressRequest(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		body := c.Request.Body
		if isGzip(c) {
			reader, err := gzip.NewReader(body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
					Error:   "validation_failed",
					Message: "request body is not valid gzip",
				})
				return
			}
			body = inflatedBody{Reader: reader, raw: body}
			c.Request.Header.Del("Content-Encoding")
			c.Request.ContentLength = -1
		}
		if maxBytes > 0 {
			body = http.MaxBytesReader(c.Writer, body, maxBytes)
		}

		c.Request.Body = body
		c.Next()
	}
}
