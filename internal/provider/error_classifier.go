package provider

import "strings"

// ProviderError wraps a vendor API error with classification metadata.
type ProviderError struct {
	// Provider is the name of the vendor that returned the error.
	Provider string
	// StatusCode is the HTTP status code from the vendor API.
	StatusCode int
	// Message is the error description from the vendor API.
	Message string
	// Permanent indicates the error will not succeed on retry.
	Permanent bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// ClassifyHTTPError creates a ProviderError from an HTTP status code and
// response body, classifying it as permanent or transient.
func ClassifyHTTPError(providerName string, statusCode int, body string) *ProviderError {
	pe := &ProviderError{
		Provider:   providerName,
		StatusCode: statusCode,
		Message:    body,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		// Not an error.
		return nil

	case statusCode == 400:
		pe.Permanent = containsPermanentIndicator(body)

	case statusCode == 401:
		pe.Permanent = true

	case statusCode == 403:
		pe.Permanent = true

	case statusCode == 404:
		pe.Permanent = true

	case statusCode == 429:
		// Rate limited - always transient.
		pe.Permanent = false

	case statusCode >= 500:
		pe.Permanent = containsPermanentServerIndicator(body)

	default:
		// Other 4xx codes are treated as permanent.
		pe.Permanent = statusCode >= 400 && statusCode < 500
	}

	return pe
}

// containsPermanentIndicator checks if a 400 response body indicates a
// permanent failure (e.g., invalid number, bad request that won't change).
func containsPermanentIndicator(body string) bool {
	lower := strings.ToLower(body)
	permanentPatterns := []string{
		"invalid recipient",
		"invalid number",
		"not a valid phone number",
		"unsubscribed recipient",
		"blacklisted",
		"bad request",
		"validation error",
		"invalid address",
	}
	for _, pattern := range permanentPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// containsPermanentServerIndicator checks if a 5xx response body indicates
// a permanent server-side failure (e.g., invalid auth configuration).
func containsPermanentServerIndicator(body string) bool {
	lower := strings.ToLower(body)
	permanentPatterns := []string{
		"invalid api key",
		"authentication failed",
		"account suspended",
		"account disabled",
		"unauthorized",
	}
	for _, pattern := range permanentPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
