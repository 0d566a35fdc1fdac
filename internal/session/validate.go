package session

import (
	"regexp"
	"strings"
)

var youtubeURL = regexp.MustCompile(`^(https?://)?((www|m)\.)?(youtube\.com|youtu\.?be)/.+$`)

// ValidURL reports whether input looks like a YouTube video link.
func ValidURL(input string) bool {
	return youtubeURL.MatchString(strings.TrimSpace(input))
}
