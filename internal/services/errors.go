package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrStrategyUnavailable marks a strategy whose host capability is missing.
	ErrStrategyUnavailable = errors.New("strategy unavailable")
	// ErrStrategyInvalidResult marks a document that parsed but lacks required fields.
	ErrStrategyInvalidResult = errors.New("strategy invalid result")
	// ErrStrategyTransport marks a network or timeout failure of the remote strategy.
	ErrStrategyTransport = errors.New("strategy transport error")
	// ErrExtractionExhausted is returned when every strategy failed.
	ErrExtractionExhausted = errors.New("extraction exhausted")
	// ErrSubtitleFetch marks a failed subtitle fetch or conversion.
	ErrSubtitleFetch = errors.New("subtitle fetch error")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsStrategyFailure reports whether err is one of the non-fatal strategy-level
// failures that should make the extractor try the next strategy.
func IsStrategyFailure(err error) bool {
	return errors.Is(err, ErrStrategyUnavailable) ||
		errors.Is(err, ErrStrategyInvalidResult) ||
		errors.Is(err, ErrStrategyTransport)
}

// HTTPStatus maps an error to the status code the serve API answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExtractionExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrSubtitleFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{component, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "unspecified failure"
	}
	return strings.Join(parts, ": ")
}
