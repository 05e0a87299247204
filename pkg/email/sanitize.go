// Package email finds the customer address on a ticket page.
//
// The search is a best-effort heuristic: a fixed label anchor marks the
// email field and the address is looked for in and around it. WaitForEmail
// re-runs the search on every document change until it succeeds or a
// deadline passes.
package email

import (
	"regexp"
	"strings"
)

// pattern is the email shape used everywhere: local-part, @, domain and a
// top-level label of at least two letters. It is a substring search.
const pattern = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`

var (
	emailRe     = regexp.MustCompile(`(?i)` + pattern)
	fullEmailRe = regexp.MustCompile(`(?i)^` + pattern + `$`)

	labelPrefixRe   = regexp.MustCompile(`(?i)^(e-?mail)[:\s]*`)
	bareEmailWordRe = regexp.MustCompile(`(?i)^email`)
	trailingJunkRe  = regexp.MustCompile(`[),.;:\s]+$`)
)

// Match returns the first substring of s shaped like an email address.
func Match(s string) (string, bool) {
	m := emailRe.FindString(s)
	return m, m != ""
}

// IsEmail reports whether all of s is shaped like an email address.
func IsEmail(s string) bool {
	return fullEmailRe.MatchString(s)
}

// Sanitize cleans a raw candidate. The steps run in a fixed order:
//
//  1. strip a leading "email"/"e-mail" label and any colon or spaces after it
//  2. if the rest still starts with the bare word "email" and dropping it
//     leaves a valid address, drop it ("Emailjohn@doe.com")
//  3. trim trailing punctuation and whitespace
//  4. if the result is not entirely an address, keep the first address
//     found inside it
//
// ok is false when no address survives.
func Sanitize(raw string) (string, bool) {
	out := strings.TrimSpace(raw)

	out = labelPrefixRe.ReplaceAllString(out, "")

	if bareEmailWordRe.MatchString(out) {
		stripped := bareEmailWordRe.ReplaceAllString(out, "")
		if emailRe.MatchString(stripped) {
			out = stripped
		}
	}

	out = trailingJunkRe.ReplaceAllString(out, "")

	if IsEmail(out) {
		return out, true
	}
	return Match(out)
}
