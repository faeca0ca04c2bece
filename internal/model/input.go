package model

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// RunInput is the seed for one pipeline run: the vendor (seller) and the
// prospect (target account) domains, both in canonical https:// form.
type RunInput struct {
	VendorDomain   string `json:"vendor_domain"`
	ProspectDomain string `json:"prospect_domain"`
}

// NewRunInput normalizes and validates both domains. Accepted forms:
// "example.com", "www.example.com", "http://example.com",
// "https://example.com" — all normalized to "https://example.com".
func NewRunInput(vendor, prospect string) (RunInput, error) {
	v, err := NormalizeDomain(vendor)
	if err != nil {
		return RunInput{}, eris.Wrap(err, "vendor_domain")
	}
	p, err := NormalizeDomain(prospect)
	if err != nil {
		return RunInput{}, eris.Wrap(err, "prospect_domain")
	}
	return RunInput{VendorDomain: v, ProspectDomain: p}, nil
}

// NormalizeDomain converts a bare, www-prefixed, or fully-qualified domain
// to canonical https:// form.
func NormalizeDomain(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", eris.New("domain is required")
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", eris.Wrapf(err, "parse domain %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", eris.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" || !strings.Contains(host, ".") {
		return "", eris.Errorf("invalid domain %q", raw)
	}

	return "https://" + host, nil
}

// Hostname returns the bare host of a normalized domain, for display.
func Hostname(domain string) string {
	if u, err := url.Parse(domain); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return domain
}
