package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/web/errors"
)

// Response 统一响应结构
type Response struct {
	Code      int    `json:"code"`    // 业务错误码
	Message   string `json:"message"` // 提示信息
	Data      any    `json:"data"`    // 数据载体
	RequestID string `json:"request_id,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:      errors.CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: logger.RequestIDFrom(c.Request.Context()),
	})
}

// Fail 业务失败响应，HTTP 状态码由业务码推导，data 用于携带纠正信息
func Fail(c *gin.Context, code int, message string, data any) {
	c.AbortWithStatusJSON(errors.CodeToStatus(code), Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: logger.RequestIDFrom(c.Request.Context()),
	})
}

// Error 错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:      code,
		Message:   message,
		RequestID: logger.RequestIDFrom(c.Request.Context()),
	})
}
