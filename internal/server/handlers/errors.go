// Package handlers adapts the herd services to gin HTTP handlers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Record  string   `json:"record_id,omitempty"`
	Pending []string `json:"pending_steps,omitempty"`
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var (
		verr    *models.ValidationError
		partial *models.PartialCompletionError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrSignupNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrTransitionNotImplemented):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := StatusFor(err)
	body := ErrorBody{Error: err.Error()}

	var (
		verr    *models.ValidationError
		partial *models.PartialCompletionError
	)
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	if errors.As(err, &partial) {
		body.Record = partial.RecordID
		body.Pending = partial.Pending
	}
	switch status {
	case http.StatusNotFound:
		// Foreign records look exactly like missing ones.
		body.Error = models.ErrNotFound.Error()
	case http.StatusInternalServerError:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.AbortWithStatusJSON(status, body)
}

func badBody(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{Error: "invalid request body: " + err.Error()})
}

// queryInt reads an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &models.ValidationError{Field: name, Value: raw, Reason: "expected a non-negative integer"}
	}
	return v, nil
}

// queryBool reads an optional boolean query parameter.
func queryBool(c *gin.Context, name string) (*bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &models.ValidationError{Field: name, Value: raw, Reason: "expected true or false"}
	}
	return &v, nil
}
