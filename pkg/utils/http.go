// Package utils provides common utility functions.
package utils

import "net/http"

// DefaultUserAgent identifies the analyzer to archive services.
const DefaultUserAgent = "IRA-Messaging-Analyzer/1.0"

// BuildHeaders creates request headers with the identifying user agent and any extras.
func BuildHeaders(userAgent string, customHeaders map[string]string) http.Header {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	headers := http.Header{}

	headers.Set("User-Agent", userAgent)
	headers.Set("Accept", "application/json, text/html")

	for key, value := range customHeaders {
		headers.Set(key, value)
	}

	return headers
}
