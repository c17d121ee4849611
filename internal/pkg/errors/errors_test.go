package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
		{CodeOpenAI, http.StatusInternalServerError},
		{CodeQdrant, http.StatusInternalServerError},
		{CodeLogging, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test")
			if got := err.HTTPStatus(); got != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(CodeQdrant, "search failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match cause")
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}

func TestWithDetail(t *testing.T) {
	err := ValidationError("bad input").WithDetail("field", "query")
	if err.Details["field"] != "query" {
		t.Errorf("Details[field] = %s, want query", err.Details["field"])
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ValidationError("x")) {
		t.Error("ValidationError should be validation")
	}
	if !IsValidation(InvalidRequestError("x")) {
		t.Error("InvalidRequestError should be validation")
	}
	if IsValidation(InternalError("x", nil)) {
		t.Error("InternalError should not be validation")
	}
	if IsValidation(errors.New("plain")) {
		t.Error("plain error should not be validation")
	}
}

func TestWriteErrorAppError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, ValidationError("query too short"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != CodeValidation {
		t.Errorf("Code = %s, want %s", resp.Code, CodeValidation)
	}
	if resp.Error != "query too short" {
		t.Errorf("Error = %s", resp.Error)
	}
}

func TestWriteErrorSanitizesUnknown(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, errors.New("secret internal detail"))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == "secret internal detail" {
		t.Error("internal error detail leaked to client")
	}
}

func TestWriteErrorDoesNotLeakWrappedCause(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, QdrantError("search failed", errors.New("dial tcp 10.0.0.5: refused")))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}

	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Error("wrapped cause leaked to client")
	}
}
