package utils

import (
	"regexp"
	"strings"
)

// NormalizeSubject removes prefixes like Re:, Fwd:, etc. from a subject
func NormalizeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	prefixRegex := regexp.MustCompile(`(?i)^(Re|Fwd|Fw)(\[\d+\])?:\s*`)
	for prefixRegex.MatchString(subject) {
		subject = prefixRegex.ReplaceAllString(subject, "")
		subject = strings.TrimSpace(subject)
	}
	return subject
}

// TextToHTML wraps plain text paragraphs in <p> tags and converts line breaks
func TextToHTML(text string) string {
	html := strings.ReplaceAll(text, "\n\n", "</p><p>")
	html = strings.ReplaceAll(html, "\n", "<br>")
	return "<p>" + html + "</p>"
}
