package validate

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strings"
)

// URL validation errors
var (
	ErrInvalidURL       = errors.New("invalid URL format")
	ErrDisallowedScheme = errors.New("URL scheme not allowed")
	ErrPrivateHost      = errors.New("URL points at a private or local host")
)

// MaxURLLength bounds stored article and image links.
const MaxURLLength = 2048

var webSchemes = []string{"https", "http"}

// ArticleURL validates a public http(s) link for an article or its image.
// Empty is allowed. Hosts given as localhost or a private IP literal are
// rejected; host names are not resolved.
func ArticleURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if len(raw) > MaxURLLength {
		return "", fmt.Errorf("%w: URL exceeds %d characters", ErrStringTooLong, MaxURLLength)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !slices.Contains(webSchemes, strings.ToLower(parsed.Scheme)) {
		return "", fmt.Errorf("%w: got %q", ErrDisallowedScheme, parsed.Scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return "", ErrPrivateHost
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return "", fmt.Errorf("%w: %s", ErrPrivateHost, ip)
	}
	return raw, nil
}

// isPrivateIP reports whether ip is loopback, link-local, unspecified or in a
// private range.
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
