package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newContext(method, target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequestID_GeneratesNew(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")

	handler := func(c echo.Context) error {
		if requestIDOf(c) == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestID()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Header().Get(RequestIDHeader)) != 36 {
		t.Errorf("expected UUID X-Request-ID response header, got %q", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	c.Request().Header.Set(RequestIDHeader, "my-custom-id")

	handler := func(c echo.Context) error {
		if rid := requestIDOf(c); rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	if err := RequestID()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestID_ReplacesOversized(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	c.Request().Header.Set(RequestIDHeader, strings.Repeat("x", 200))

	if err := RequestID()(func(c echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); len(got) != 36 {
		t.Errorf("expected a generated id, got %q", got)
	}
}

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	return line
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	c, _ := newContext(http.MethodGet, "/formpacks/notfallpass/docx/mapping.json")
	c.Set(RequestIDKey, "req-1")

	err := Logger(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := logLine(t, &buf)
	if line["level"] != "info" || line["message"] != "request" {
		t.Errorf("unexpected level/message: %v", line)
	}
	if line["request_id"] != "req-1" || line["status"] != float64(200) {
		t.Errorf("unexpected fields: %v", line)
	}
	if line["path"] != "/formpacks/notfallpass/docx/mapping.json" {
		t.Errorf("unexpected path: %v", line["path"])
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		handler echo.HandlerFunc
		level   string
	}{
		{"not modified", http.StatusOK, func(c echo.Context) error { return c.NoContent(http.StatusNotModified) }, "debug"},
		{"not found", http.StatusOK, func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound) }, "warn"},
		{"server error", http.StatusInternalServerError, func(c echo.Context) error { return errors.New("boom") }, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c, _ := newContext(http.MethodGet, "/")
			c.Response().Status = tt.status
			_ = Logger(zerolog.New(&buf))(tt.handler)(c)

			if got := logLine(t, &buf)["level"]; got != tt.level {
				t.Errorf("expected level %s, got %v", tt.level, got)
			}
		})
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	c, rec := newContext(http.MethodGet, "/panic")
	c.Request().Header.Set(RequestIDHeader, "req-7")

	err := RequestID()(Recovery(zerolog.New(&buf))(func(c echo.Context) error {
		panic("test panic")
	}))(c)

	if err != nil {
		t.Fatalf("expected the panic to be answered, got %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] != "internal server error" || body["request_id"] != "req-7" {
		t.Errorf("unexpected body %v", body)
	}
	if line := logLine(t, &buf); line["panic"] != "test panic" || line["committed"] != false {
		t.Errorf("unexpected log line %v", line)
	}
}

func TestRecovery_CommittedResponseIsLeftAlone(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/formpacks/notfallpass/docx/a4.docx")

	err := Recovery(zerolog.Nop())(func(c echo.Context) error {
		c.Response().WriteHeader(http.StatusOK)
		_, _ = c.Response().Write([]byte("PK"))
		panic("stream broke")
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "PK" {
		t.Errorf("committed response was rewritten: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/")
	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Errorf("expected http.ErrAbortHandler, got %v", r)
		}
	}()
	_ = Recovery(zerolog.Nop())(func(c echo.Context) error {
		panic(http.ErrAbortHandler)
	})(c)
	t.Error("panic was swallowed")
}

func TestRecovery_PassesThrough(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/ok")

	err := Recovery(zerolog.Nop())(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
