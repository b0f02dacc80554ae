package auth

import "strings"

// NormalizeEmail trims surrounding whitespace and lower-cases the domain
// part. The local part is kept as typed; uniqueness is enforced
// case-insensitively by the store.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
