package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{E(CodeInvalidArgument, "op", "bad", nil), http.StatusBadRequest},
		{E(CodeUnauthorized, "op", "no", nil), http.StatusUnauthorized},
		{E(CodeForbidden, "op", "no", nil), http.StatusForbidden},
		{E(CodeNotFound, "op", "missing", nil), http.StatusNotFound},
		{E(CodeConflict, "op", "state", nil), http.StatusConflict},
		{E(CodeUnavailable, "op", "down", nil), http.StatusServiceUnavailable},
		{E(CodeTimeout, "op", "slow", nil), http.StatusGatewayTimeout},
		{E(CodeCanceled, "op", "gone", nil), 499},
		{fmt.Errorf("wrapped: %w", E(CodeNotFound, "op", "missing", nil)), http.StatusNotFound},
		{fmt.Errorf("repo: %w", ErrNotFound), http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, ""},
		{E(CodeConflict, "op", "", nil), CodeConflict},
		{context.Canceled, CodeCanceled},
		{fmt.Errorf("stt: %w", context.DeadlineExceeded), CodeTimeout},
		{errors.New("x"), CodeInternal},
	}
	for _, tt := range tests {
		if got := CodeOf(tt.err); got != tt.want {
			t.Errorf("CodeOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if !IsCode(E(CodeNotFound, "op", "", nil), CodeNotFound) {
		t.Fatal("IsCode mismatch")
	}
}

func TestAppErrorMessages(t *testing.T) {
	inner := errors.New("dial tcp")
	err := E(CodeUnavailable, "SessionService.Start", "store down", inner)

	if got := err.Error(); got != "SessionService.Start: store down: dial tcp" {
		t.Fatalf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Fatal("wrapped error lost")
	}
	if SafeMessage(err) != "store down" {
		t.Fatalf("SafeMessage = %q", SafeMessage(err))
	}
	if SafeMessage(inner) != "internal error" {
		t.Fatal("raw errors must not leak")
	}
}
