package security

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	// SQL injection patterns (in addition to using parameterized queries)
	sqlInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(union\s+select|insert\s+into|delete\s+from|drop\s+table|update\s+.*set)`),
		regexp.MustCompile(`(?i)(exec\s*\(|execute\s*\(|script\s*>|javascript:)`),
	}

	// XSS patterns
	xssPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?i)<iframe[^>]*>.*?</iframe>`),
		regexp.MustCompile(`(?i)on\w+\s*=`), // onclick, onload, etc.
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)<embed[^>]*>`),
		regexp.MustCompile(`(?i)<object[^>]*>`),
	}

	htmlTagsRegex   = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	validEmailChars = regexp.MustCompile(`[^a-z0-9._%+\-@]`)
)

// SanitizeString removes potentially dangerous characters from input
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")
	input = removeControlCharacters(input)
	return input
}

// SanitizeForSQL sanitizes input for SQL (note: always use parameterized queries!)
// This is a defense-in-depth measure, not a replacement for parameterized queries
func SanitizeForSQL(input string) string {
	input = SanitizeString(input)

	for _, pattern := range sqlInjectionPatterns {
		if pattern.MatchString(input) {
			input = pattern.ReplaceAllString(input, "")
		}
	}

	return input
}

// SanitizeForXSS removes XSS attack vectors
func SanitizeForXSS(input string) string {
	input = SanitizeString(input)

	for _, pattern := range xssPatterns {
		input = pattern.ReplaceAllString(input, "")
	}

	return html.EscapeString(input)
}

// SanitizeEmail sanitizes and normalizes email addresses
func SanitizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)
	return validEmailChars.ReplaceAllString(email, "")
}

// StripHTMLTags removes all HTML tags from input
func StripHTMLTags(input string) string {
	return htmlTagsRegex.ReplaceAllString(input, "")
}

func removeControlCharacters(input string) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// TruncateString truncates a string to a maximum length
func TruncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	return input[:maxLength]
}

// NormalizeWhitespace collapses runs of whitespace into single spaces
func NormalizeWhitespace(input string) string {
	input = whitespaceRegex.ReplaceAllString(input, " ")
	return strings.TrimSpace(input)
}

// ContainsSQLInjection checks if input contains potential SQL injection patterns
func ContainsSQLInjection(input string) bool {
	for _, pattern := range sqlInjectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// ContainsXSS checks if input contains potential XSS patterns
func ContainsXSS(input string) bool {
	for _, pattern := range xssPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// SanitizeInput is a general-purpose sanitizer for user input
func SanitizeInput(input string, maxLength int) string {
	input = SanitizeString(input)
	input = SanitizeForXSS(input)
	input = SanitizeForSQL(input)
	input = NormalizeWhitespace(input)
	if maxLength > 0 {
		input = TruncateString(input, maxLength)
	}
	return input
}
