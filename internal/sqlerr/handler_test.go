package sqlerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/guestbook/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestHandleError_NoRowsWithTable(t *testing.T) {
	err := HandleError(fmt.Errorf("%sguestbook: %w", TablePrefix, pgx.ErrNoRows))

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Guestbook not found", httpErr.Message)
	assert.True(t, httpErr.Override)
}

func TestHandleError_NoRowsGeneric(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(pgx.ErrNoRows))

	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Resource not found", httpErr.Message)
}

func TestHandleError_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Severity:       "ERROR",
		TableName:      "users",
		ConstraintName: "users_email_key",
	}

	httpErr := asHTTPError(t, HandleError(fmt.Errorf("insert: %w", pgErr)))

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "USER_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "A User with this Email already exists", httpErr.Message)
}

func TestHandleError_CheckViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23514", TableName: "guestbook", ColumnName: "message"}

	httpErr := asHTTPError(t, HandleError(pgErr))

	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "GUESTBOOK_INVALID", httpErr.Code)
	assert.Equal(t, "The Message value does not meet required conditions", httpErr.Message)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", TableName: "guestbook", ColumnName: "user_id"}

	httpErr := asHTTPError(t, HandleError(pgErr))

	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "user_id", httpErr.Errors[0].Field)
	assert.Equal(t, "GUESTBOOK_REQUIRED", httpErr.Code)
}

func TestHandleError_UnknownIsInternal(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(&pgconn.PgError{Code: "XX000"}))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)

	httpErr = asHTTPError(t, HandleError(errors.New("connection reset")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewForbiddenError("No permission", true)
	assert.Same(t, original, HandleError(original))
}

func TestErrCode(t *testing.T) {
	sqlErr := ConvertPgError(&pgconn.PgError{Code: "23503", Severity: "FATAL"})

	assert.Equal(t, ForeignKeyViolation, ErrCode(fmt.Errorf("wrap: %w", sqlErr)))
	assert.Equal(t, SeverityFatal, sqlErr.Severity)
	assert.Equal(t, Other, ErrCode(errors.New("plain")))

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(sqlErr, &pgErr))
}

func TestMapSeverity_UnknownIsError(t *testing.T) {
	assert.Equal(t, SeverityError, MapSeverity("WHATEVER"))
	assert.Equal(t, SeverityNotice, MapSeverity("NOTICE"))
}
