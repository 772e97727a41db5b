package errors

import (
	"net/http"

	"github.com/go-faster/errors"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingFields     = errors.New("all fields are required")
	ErrInvalidEmail      = errors.New("Invalid email")
	ErrInvalidPhone      = errors.New("Invalid phone number")
	ErrInvalidPrice      = errors.New("price must be a non-negative number")
	ErrInvalidMoney      = errors.New("money must be a non-negative number")
	ErrNoUpdatableFields = errors.New("no valid fields to update")
	ErrInsufficientFunds = errors.New("Insufficient funds")

	ErrMissingToken       = errors.New("Missing token")
	ErrInvalidToken       = errors.New("Invalid token")
	ErrInvalidPin         = errors.New("Invalid PIN")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownAccount     = errors.New("user does not exist")

	ErrForbidden      = errors.New("access denied")
	ErrNotFound       = errors.New("resource not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrConflict       = errors.New("user or email already exists")

	ErrInternalServer = errors.New("internal server error")
	ErrRateLimited    = errors.New("too many requests")

	ErrConfigFileReadFailed = errors.New("failed to read config file")
	ErrConfigInvalid        = errors.New("invalid configuration")
	ErrInvalidGzipRequest   = errors.New("invalid gzip request body")
)

var statusByError = []struct {
	err    error
	status int
}{
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrMissingFields, http.StatusBadRequest},
	{ErrInvalidEmail, http.StatusBadRequest},
	{ErrInvalidPhone, http.StatusBadRequest},
	{ErrInvalidPrice, http.StatusBadRequest},
	{ErrInvalidMoney, http.StatusBadRequest},
	{ErrNoUpdatableFields, http.StatusBadRequest},
	{ErrInsufficientFunds, http.StatusBadRequest},
	{ErrMissingToken, http.StatusUnauthorized},
	{ErrInvalidToken, http.StatusUnauthorized},
	{ErrInvalidPin, http.StatusUnauthorized},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrUnknownAccount, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrMemberNotFound, http.StatusNotFound},
	{ErrUserNotFound, http.StatusNotFound},
	{ErrNotFound, http.StatusNotFound},
	{ErrConflict, http.StatusConflict},
	{ErrRateLimited, http.StatusTooManyRequests},
}

// StatusCode maps an error chain to the HTTP status it is reported with.
// Anything unclassified is a 500.
func StatusCode(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing text for err: the sentinel's own text for
// classified errors, the full message otherwise.
func Message(err error) string {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.err.Error()
		}
	}
	return err.Error()
}
