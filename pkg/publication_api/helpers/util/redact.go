package util

import "regexp"

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// RedactEmails masks any email addresses in s so that aggregated error
// text can be logged without leaking PII.
func RedactEmails(s string) string {
	return emailPattern.ReplaceAllString(s, "[redacted email]")
}
