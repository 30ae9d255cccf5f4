package validators

import "strings"

const bearerScheme = "bearer"

// BearerToken extracts the token from an Authorization header value. A bare
// token without the scheme is accepted too; a scheme with no token is not.
func BearerToken(header string) (string, bool) {
	token := strings.TrimSpace(header)
	if strings.EqualFold(token, bearerScheme) {
		return "", false
	}
	if len(token) > len(bearerScheme) && strings.EqualFold(token[:len(bearerScheme)], bearerScheme) &&
		(token[len(bearerScheme)] == ' ' || token[len(bearerScheme)] == '\t') {
		token = strings.TrimSpace(token[len(bearerScheme):])
	}
	return token, token != ""
}
