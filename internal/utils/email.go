package utils

import (
	"fmt"
	"strings"
)

func ExtractDomainFromEmail(email string) string {
	if email == "" {
		return ""
	}

	email = strings.TrimSpace(email)

	// Handle potential angle brackets in email (e.g., "Name <email@domain.com>")
	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = email[startIdx:endIdx]
		}
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// LocalPartFromEmail returns everything before the @, used as a display-name fallback
func LocalPartFromEmail(email string) string {
	parts := strings.Split(strings.TrimSpace(email), "@")
	return parts[0]
}

func FormatAddress(displayName, email string) string {
	if displayName == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", displayName, email)
}
