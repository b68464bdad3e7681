package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"omr-portal/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// 识别结果 JSON 与 Excel 上传都会走到这里，maxBytes 需覆盖整批扫描的体量
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() {
			return
		}
		for _, err := range c.Errors {
			if err.Err != nil && err.Err.Error() == "http: request body too large" {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
