package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/psyscale/psyscale/internal/platform/auth"
)

func TestLogger_PassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/scales", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.Nop()
	err := Logger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLogger_EmitsRequestAndUserFields(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/assessments", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.UserIDKey, "clin-7"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-42")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	err := Logger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := buf.String()
	for _, want := range []string{`"request_id":"req-42"`, `"user_id":"clin-7"`, `"path":"/assessments"`, `"status":201`} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %s: %s", want, line)
		}
	}
}

func TestRecovery_RecoversPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.Nop()
	err := Recovery(logger)(func(c echo.Context) error {
		panic("boom")
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 from recovered panic, got %v", err)
	}
}
