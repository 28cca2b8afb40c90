package server

import (
	"errors"
	"net/http"

	"github.com/minjae/interview-report/internal/report"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notFound *report.SessionNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
