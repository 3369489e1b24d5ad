package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToStatus(t *testing.T) {
	tests := map[int]int{
		CodeOK:                  http.StatusOK,
		CodeInvalidParams:       http.StatusBadRequest,
		CodeInvalidAmount:       http.StatusBadRequest,
		CodeUnAuthorized:        http.StatusUnauthorized,
		CodeForbidden:           http.StatusForbidden,
		CodeItemNotFound:        http.StatusNotFound,
		CodeRewardNotFound:      http.StatusNotFound,
		CodeOutOfStock:          http.StatusConflict,
		CodeAlreadyClaimedToday: http.StatusConflict,
		CodeInsufficientFunds:   http.StatusUnprocessableEntity,
		CodeRateLimited:         http.StatusTooManyRequests,
		CodeInternalError:       http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, CodeToStatus(code), "code %d", code)
	}
}
