package api

import (
	"errors"
	"net/http"

	"github.com/gradepilot/gradepilot/internal/core"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Category string `json:"category,omitempty"`
}

// httpError maps a service error to an HTTP status and response body.
func httpError(err error) (int, errorBody) {
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr == nil {
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}

	body := errorBody{
		Error:    domErr.Message,
		Code:     domErr.Code,
		Category: string(domErr.Category),
	}

	switch domErr.Category {
	case core.ErrCatValidation:
		return http.StatusUnprocessableEntity, body
	case core.ErrCatNotFound:
		return http.StatusNotFound, body
	case core.ErrCatRateLimit:
		return http.StatusTooManyRequests, body
	case core.ErrCatParse, core.ErrCatExternal:
		return http.StatusBadGateway, body
	case core.ErrCatModel:
		return http.StatusServiceUnavailable, body
	default:
		return http.StatusInternalServerError, body
	}
}
