package validation

import (
	"mime"
	"path"
	"regexp"
	"strings"
	"unicode"
)

const (
	MaxEmailLength       = 254
	MaxPasswordBytes     = 72
	MaxProjectNameLength = 200
	MaxDescriptionLength = 2000
	MaxFilenameLength    = 255

	defaultContentType = "application/octet-stream"
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > MaxEmailLength {
		return false
	}
	return emailRegex.MatchString(email)
}

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword returns a message describing why password is unusable, or
// "" if it is acceptable.
func ValidatePassword(password string) string {
	if password == "" {
		return "Password is required"
	}
	if len(password) > MaxPasswordBytes {
		return "Password must be at most 72 bytes"
	}
	return ""
}

// ValidateProject checks project name and description, returning per-field
// messages.
func ValidateProject(name, description string) map[string]string {
	errors := make(map[string]string)

	name = strings.TrimSpace(name)
	if name == "" {
		errors["name"] = "Name is required"
	} else if len([]rune(name)) > MaxProjectNameLength {
		errors["name"] = "Name must be at most 200 characters"
	}
	if len([]rune(description)) > MaxDescriptionLength {
		errors["description"] = "Description must be at most 2000 characters"
	}

	return errors
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// TruncateString truncates a string to maxLen bytes without splitting a rune
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// SanitizeFilename reduces an uploaded filename to a safe display name: no
// directories, no control characters, bounded length.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimSpace(SanitizeString(name))
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if name == "" || name == "." || name == "/" || name == ".." {
		return "unnamed"
	}
	return TruncateString(name, MaxFilenameLength)
}

// NormalizeContentType returns the media type without parameters, falling
// back to application/octet-stream when it cannot be parsed.
func NormalizeContentType(contentType string) string {
	if contentType == "" {
		return defaultContentType
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultContentType
	}
	return mediaType
}
