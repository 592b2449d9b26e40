package utils

import (
	"net/url"
	"strings"

	"github.com/CovenantEyes/winsparkle/internal/errs"
)

// ParseSecureURL accepts only absolute https URLs. what names the URL's role
// in errors ("appcast feed", "update file").
func ParseSecureURL(raw, what string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errs.Newf(errs.InsecureTransport, what, "failed to parse URL: %v", err)
	}
	if !strings.EqualFold(parsed.Scheme, "https") || parsed.Host == "" {
		return nil, errs.Newf(errs.InsecureTransport, what, "insecure URL rejected: %s", Redact(parsed))
	}
	return parsed, nil
}

// Redact drops user info and query from u for logging.
func Redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	c := *u
	c.User = nil
	c.RawQuery = ""
	c.Fragment = ""
	return c.String()
}

// PathBase returns the last path element of raw, or "" when it has none.
func PathBase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	return p
}
