// Package deeplink extracts auth-completion tokens from incoming URLs
// delivered by the host.
package deeplink

import "net/url"

// Token parses an incoming URL and returns the value of its "token" query
// parameter. It returns false when the URL is unparsable or carries no token,
// meaning the event is not an auth completion and must be ignored.
func Token(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	token := u.Query().Get("token")
	if token == "" {
		return "", false
	}
	return token, true
}
