package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans user-authored HTML (lesson content, assignment text,
// submissions) to prevent XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
