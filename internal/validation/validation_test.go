package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/guestbook/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notePayload struct {
	Title string `json:"title" validate:"required,min=2,max=5"`
	Count int    `json:"count" validate:"max=3"`
}

func (p *notePayload) Validate() error {
	return Validator().Struct(p)
}

type customPayload struct{}

func (p *customPayload) Validate() error {
	return CustomValidationErrors{{Field: "tags", Message: "must be unique"}}
}

func newContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func requireHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

func TestBindAndValidate_OK(t *testing.T) {
	var p notePayload
	require.NoError(t, BindAndValidate(newContext(`{"title":"abc","count":1}`), &p))
	assert.Equal(t, "abc", p.Title)
}

func TestBindAndValidate_MalformedJSON(t *testing.T) {
	var p notePayload
	httpErr := requireHTTPError(t, BindAndValidate(newContext(`{"title":`), &p))
	assert.NotEmpty(t, httpErr.Message)
	assert.Empty(t, httpErr.Errors)
}

func TestBindAndValidate_WrongType(t *testing.T) {
	var p notePayload
	httpErr := requireHTTPError(t, BindAndValidate(newContext(`{"title":42}`), &p))
	assert.Contains(t, httpErr.Message, "Unmarshal type error")
}

func TestBindAndValidate_FieldErrorsUseJSONNames(t *testing.T) {
	var p notePayload
	httpErr := requireHTTPError(t, BindAndValidate(newContext(`{"title":"toolong","count":9}`), &p))

	require.Len(t, httpErr.Errors, 2)
	assert.Equal(t, errs.FieldError{Field: "title", Error: "must not exceed 5 characters"}, httpErr.Errors[0])
	assert.Equal(t, errs.FieldError{Field: "count", Error: "must not exceed 3"}, httpErr.Errors[1])
}

func TestBindAndValidate_Required(t *testing.T) {
	var p notePayload
	httpErr := requireHTTPError(t, BindAndValidate(newContext(`{}`), &p))

	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "is required", httpErr.Errors[0].Error)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	httpErr := requireHTTPError(t, BindAndValidate(newContext(`{}`), &customPayload{}))

	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "tags", httpErr.Errors[0].Field)
}

func newRawContext(body, contentType string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestDecodeJSONAndValidate_IgnoresContentType(t *testing.T) {
	for _, contentType := range []string{"", "text/plain;charset=UTF-8", echo.MIMEApplicationJSON} {
		t.Run(contentType, func(t *testing.T) {
			var p notePayload
			require.NoError(t, DecodeJSONAndValidate(newRawContext(`{"title":"abc","count":1}`, contentType), &p))
			assert.Equal(t, "abc", p.Title)
			assert.Equal(t, 1, p.Count)
		})
	}
}

func TestDecodeJSONAndValidate_Failures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		message    string
		fieldCount int
	}{
		{"empty body", "", "Request body is empty", 0},
		{"malformed", `{"title":`, "", 0},
		{"wrong type", `{"title":42}`, "", 0},
		{"rule violation", `{"title":"toolong"}`, "Validation failed", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p notePayload
			httpErr := requireHTTPError(t, DecodeJSONAndValidate(newRawContext(tt.body, "text/plain"), &p))
			if tt.message != "" {
				assert.Equal(t, tt.message, httpErr.Message)
			} else {
				assert.NotEmpty(t, httpErr.Message)
			}
			assert.Len(t, httpErr.Errors, tt.fieldCount)
		})
	}
}
