package intelinfo

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	// DefaultBaseURL is the production backend origin, used when no
	// override is configured.
	DefaultBaseURL = "https://api.intelinfo.me"

	// EnvBaseURL is the environment variable that overrides the base URL.
	EnvBaseURL = "INTELINFO_API_BASE"
)

// BaseURLFromEnv resolves the backend origin with a single deterministic
// rule: the EnvBaseURL variable verbatim when set, otherwise the production
// origin. There is no host sniffing and no port derivation.
func BaseURLFromEnv() string {
	if base := os.Getenv(EnvBaseURL); base != "" {
		return base
	}
	return DefaultBaseURL
}

// websocketPath is appended to the base URL, scheme-substituted, to reach
// the live update channel.
const websocketPath = "/ws"

// websocketURL derives the live channel URL from an HTTP base URL by
// substituting the scheme (http to ws, https to wss) and appending the
// fixed channel path.
func websocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("base url %q has unsupported scheme %q", baseURL, u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + websocketPath
	return u.String(), nil
}
