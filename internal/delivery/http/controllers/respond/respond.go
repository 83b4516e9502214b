// Package respond maps service errors onto HTTP responses.
package respond

import (
	"RoleChat/internal/app_errors"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{app_errors.ErrNotSignedIn, http.StatusUnauthorized},
	{app_errors.ErrInsufficientPermissions, http.StatusForbidden},
	{app_errors.ErrTokenExpired, http.StatusUnauthorized},
	{app_errors.ErrTokenNotFound, http.StatusUnauthorized},
	{app_errors.ErrInvalidToken, http.StatusUnauthorized},
	{app_errors.ErrLinkNotFound, http.StatusUnauthorized},
	{app_errors.ErrLinkExpired, http.StatusUnauthorized},
	{app_errors.ErrUserNotFound, http.StatusUnauthorized},
	{app_errors.ErrInvalidRole, http.StatusBadRequest},
	{app_errors.ErrInvalidEmail, http.StatusBadRequest},
	{app_errors.ErrInvalidMessageID, http.StatusBadRequest},
	{app_errors.ErrNotImage, http.StatusBadRequest},
	{app_errors.ErrFileSize, http.StatusRequestEntityTooLarge},
	{app_errors.ErrTooManyRequests, http.StatusTooManyRequests},
	{app_errors.ErrFeatureDisabled, http.StatusNotFound},
}

// Status returns the HTTP status for err. Unknown errors are 500.
func Status(err error) int {
	for _, e := range statusByErr {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// Error writes err as {"error": "..."} and aborts. Internal errors are
// recorded on the context for the logging middleware and their text is not
// exposed.
func Error(c *gin.Context, err error) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
