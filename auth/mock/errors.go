package mock

import (
	"fmt"
	"strings"
)

// AuthorizeError is returned when the authorization request is rejected
type AuthorizeError struct {
	StatusCode int
	Message    string
}

func (e *AuthorizeError) Error() string {
	return fmt.Sprintf("authorization rejected: %d %s", e.StatusCode, strings.TrimSpace(e.Message))
}
