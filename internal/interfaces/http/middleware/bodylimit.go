package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ecomstore/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is the allowance for multipart boundaries and headers on top of the file itself
const multipartOverhead = 64 << 10

// PathLimit caps request bodies under a path prefix
type PathLimit struct {
	Prefix   string
	MaxBytes int64
}

// UploadLimit returns the PathLimit for a multipart endpoint accepting files of up to fileBytes
func UploadLimit(prefix string, fileBytes int64) PathLimit {
	return PathLimit{Prefix: prefix, MaxBytes: fileBytes + multipartOverhead}
}

// BodyLimit caps request bodies at maxBytes, or at the limit of the longest
// matching PathLimit. Requests that declare a larger Content-Length get 413;
// streamed bodies are cut off at the limit. A limit <= 0 disables the check.
func BodyLimit(maxBytes int64, overrides ...PathLimit) gin.HandlerFunc {
	limitFor := func(path string) int64 {
		limit, matched := maxBytes, 0
		for _, o := range overrides {
			if strings.HasPrefix(path, o.Prefix) && len(o.Prefix) > matched {
				limit, matched = o.MaxBytes, len(o.Prefix)
			}
		}
		return limit
	}

	return func(c *gin.Context) {
		limit := limitFor(c.Request.URL.Path)
		if limit <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				fmt.Sprintf("Request body exceeds the %d byte limit", limit),
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
