package utils_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mockview/backend/internal/utils"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code utils.Code
		want int
	}{
		{utils.CodeValidation, http.StatusBadRequest},
		{utils.CodeAlreadyEnded, http.StatusBadRequest},
		{utils.CodeNotCompleted, http.StatusBadRequest},
		{utils.CodeUnauthorized, http.StatusUnauthorized},
		{utils.CodeForbidden, http.StatusForbidden},
		{utils.CodeNotFound, http.StatusNotFound},
		{utils.CodeTurnInProgress, http.StatusConflict},
		{utils.CodeRateLimited, http.StatusTooManyRequests},
		{utils.CodeTransientUnavailable, http.StatusServiceUnavailable},
		{utils.CodeAuthFailure, http.StatusInternalServerError},
		{utils.CodeMalformedResponse, http.StatusInternalServerError},
		{utils.CodeModelUnavailable, http.StatusInternalServerError},
		{utils.CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := utils.E(tc.code, "Op", "msg", nil)
		if got := utils.HTTPStatus(err); got != tc.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}

	if got := utils.HTTPStatus(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("HTTPStatus(plain error) = %d, want 500", got)
	}
	if got := utils.HTTPStatus(utils.ErrNotFound); got != http.StatusNotFound {
		t.Fatalf("HTTPStatus(ErrNotFound) = %d, want 404", got)
	}
}

func TestCodeMatchingThroughWrapping(t *testing.T) {
	base := utils.E(utils.CodeAlreadyEnded, "InterviewService.SubmitAnswer", "interview session has ended", nil)
	wrapped := fmt.Errorf("handler: %w", base)

	if !utils.IsCode(wrapped, utils.CodeAlreadyEnded) {
		t.Fatal("IsCode must see through wrapping")
	}
	if utils.IsCode(wrapped, utils.CodeNotFound) {
		t.Fatal("IsCode matched the wrong code")
	}
	if got := utils.CodeOf(wrapped); got != utils.CodeAlreadyEnded {
		t.Fatalf("CodeOf = %s, want ALREADY_ENDED", got)
	}
	if got := utils.CodeOf(errors.New("plain")); got != utils.CodeInternal {
		t.Fatalf("CodeOf(plain) = %s, want INTERNAL", got)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	inner := errors.New("driver: bad connection")
	err := utils.E(utils.CodeInternal, "Repo.Get", "failed to load session", inner)
	if !errors.Is(err, inner) {
		t.Fatal("AppError must wrap the inner error")
	}
}
