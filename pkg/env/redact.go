package env

import (
	"net/url"
	"strings"
)

// RedactSecret masks a secret, showing only the first 4 and last 4
// characters.
func RedactSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}

// RedactURL masks the password of a URL such as a WebDriver hub
// endpoint with userinfo.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.User != nil {
		password, hasPassword := u.User.Password()
		if hasPassword {
			u.User = url.UserPassword(u.User.Username(), RedactSecret(password))
		}
	}
	return u.String()
}
