package ai

import (
	"errors"
	"strings"

	"google.golang.org/genai"
)

var (
	// ErrMissingCredential means no API key is configured. Raised before
	// any network call; the caller must run the credential bootstrap.
	ErrMissingCredential = errors.New("gemini api key not configured")

	// ErrAuthRejected means the remote service refused the configured
	// key. Same remediation as ErrMissingCredential.
	ErrAuthRejected = errors.New("gemini rejected the configured credential")
)

// IsCredentialError reports whether err demands the credential
// reacquisition flow rather than a plain retry.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrAuthRejected)
}

// isAuthFailure classifies a remote error as auth-class: a 403/404 status
// from the API, or a message carrying the markers the hosted environments
// emit for invalid keys.
func isAuthFailure(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 403 || apiErr.Code == 404 {
			return true
		}
	}

	msg := err.Error()
	return strings.Contains(msg, "403") || strings.Contains(strings.ToLower(msg), "not found")
}
