package api

import (
	"errors"
	"net/http"

	"menuflow/pkg/apperr"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Message string `json:"message"`
}

// statusFor maps an error to its HTTP status. A missing restaurant is a 400,
// not a 404, to keep the established contract.
func statusFor(err error) int {
	var (
		ve  *apperr.ValidationError
		nf  *apperr.NotFoundError
		inf *apperr.ItemNotFoundError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf), errors.As(err, &inf):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
