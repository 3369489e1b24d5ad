package web

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/coinbot/pkg/web/errors"
)

// BindAndValidate 绑定请求参数并进行校验，失败时已写入响应
func BindAndValidate(c *gin.Context, obj any) bool {
	return bindResult(c, c.ShouldBind(obj))
}

// BindOptionalJSON 请求体可以为空的 JSON 绑定，空体只做校验。
// 不依赖 Content-Length，分块传输的请求体同样会被解析。
func BindOptionalJSON(c *gin.Context, obj any) bool {
	body := c.Request.Body
	if body == nil || body == http.NoBody {
		return bindResult(c, binding.Validator.ValidateStruct(obj))
	}
	err := c.ShouldBindJSON(obj)
	if stderrors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	return bindResult(c, err)
}

func bindResult(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var errs validator.ValidationErrors
	if stderrors.As(err, &errs) {
		Fail(c, errors.CodeInvalidParams, errs.Error(), nil)
		return false
	}
	Fail(c, errors.CodeInvalidParams, "invalid request parameters: "+err.Error(), nil)
	return false
}

// ParamInt64 解析路径参数为 int64，失败时已写入响应
func ParamInt64(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil {
		Fail(c, errors.CodeInvalidParams, "invalid "+key, nil)
		return 0, false
	}
	return v, true
}
