package services_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"vidresolve/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrStrategyTransport, "remote", "post", "WEB profile", base)
	if !errors.Is(err, services.ErrStrategyTransport) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"remote", "post", "WEB profile", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrStrategyUnavailable, "", "", "", nil)
	if err.Error() != "strategy unavailable: unspecified failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestIsStrategyFailure(t *testing.T) {
	cases := map[error]bool{
		services.Wrap(services.ErrStrategyUnavailable, "global", "", "", nil):   true,
		services.Wrap(services.ErrStrategyInvalidResult, "script", "", "", nil): true,
		services.Wrap(services.ErrStrategyTransport, "remote", "", "", nil):     true,
		services.ErrExtractionExhausted:                                        false,
		errors.New("other"):                                                    false,
	}
	for err, want := range cases {
		if got := services.IsStrategyFailure(err); got != want {
			t.Fatalf("IsStrategyFailure(%v) = %v, want %v", err, got, want)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.Wrap(services.ErrValidation, "api", "decode", "bad json", nil), http.StatusBadRequest},
		{services.Wrap(services.ErrNotFound, "api", "", "no track", nil), http.StatusNotFound},
		{services.Wrap(services.ErrExtractionExhausted, "resolver", "", "", nil), http.StatusUnprocessableEntity},
		{services.Wrap(services.ErrSubtitleFetch, "subtitles", "", "", nil), http.StatusBadGateway},
		{errors.New("surprise"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := services.HTTPStatus(tt.err); got != tt.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
