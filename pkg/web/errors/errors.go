package errors

import "net/http"

// 通用业务错误码
const (
	CodeOK            = 0
	CodeInvalidParams = 40001
	CodeUnAuthorized  = 40002
	CodeForbidden     = 40003
	CodeNotFound      = 40004
	CodeRateLimited   = 40029
	CodeInternalError = 50000
	CodeExternalError = 50001
)

// 经济系统业务错误码
const (
	CodeInsufficientFunds   = 41001
	CodeInvalidAmount       = 41002
	CodeItemNotFound        = 41003
	CodeOutOfStock          = 41004
	CodeRewardNotFound      = 41005
	CodeDuplicateReward     = 41006
	CodeAlreadyClaimedToday = 41007
	CodeEmptyPool           = 41008
)

// CodeToStatus 将业务错误码映射为 HTTP 状态码
func CodeToStatus(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeUnAuthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeItemNotFound, CodeRewardNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeDuplicateReward, CodeAlreadyClaimedToday, CodeOutOfStock:
		return http.StatusConflict
	case CodeInsufficientFunds, CodeEmptyPool:
		return http.StatusUnprocessableEntity
	}
	switch {
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	case code >= 50000:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
