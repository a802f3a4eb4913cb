package auth

import "net/url"

// MaskURL hides the host and path of a URL for unauthenticated responses:
// host becomes its first character plus "***", the path becomes "/***",
// query and fragment are dropped, and the scheme is preserved. A URL with
// no host masks to the literal "***".
func MaskURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "***"
	}

	host := []rune(parsed.Host)
	masked := "*"
	if len(host) > 1 {
		masked = string(host[0]) + "***"
	}
	return parsed.Scheme + "://" + masked + "/***"
}
