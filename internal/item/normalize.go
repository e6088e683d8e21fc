package item

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	dpPattern        = regexp.MustCompile(`(?i)/dp/([A-Z0-9]{10})`)
	gpProductPattern = regexp.MustCompile(`(?i)/gp/product/([A-Z0-9]{10})`)
)

// trackingParams are removed by NormalizeURLLite.
var trackingParams = []string{"ref", "utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content"}

// NormalizeAmazonURL rewrites an Amazon product link to
// scheme://host/dp/ASIN/. Non-Amazon links, links without an ASIN and
// unparsable input are returned unchanged.
func NormalizeAmazonURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	if !strings.Contains(u.Hostname(), "amazon.") {
		return raw
	}

	m := dpPattern.FindStringSubmatch(u.Path)
	if m == nil {
		m = gpProductPattern.FindStringSubmatch(u.Path)
	}
	if m == nil {
		return raw
	}
	return u.Scheme + "://" + u.Host + "/dp/" + strings.ToUpper(m[1]) + "/"
}

// NormalizeURLLite drops ref and utm_* tracking parameters.
func NormalizeURLLite(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	q := u.Query()
	for _, k := range trackingParams {
		q.Del(k)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
