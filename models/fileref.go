package models

import "strings"

// DefaultPublicBaseURL is where uploaded files are served from unless configured.
const DefaultPublicBaseURL = "http://localhost:3600/public"

// FileURL materializes a stored relative path as an absolute URL.
// A nil or empty path yields nil.
func FileURL(baseURL string, path *string) *string {
	if path == nil || strings.TrimSpace(*path) == "" {
		return nil
	}
	url := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(*path, "/")
	return &url
}
