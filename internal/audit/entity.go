package audit

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// knownEntities maps registrable domains of well-known third parties to the
// display names used in the output sheet. Unlisted domains fall back to the
// domain itself. Names are chosen to match the product branding, which is
// also what the downstream classifier keys on.
var knownEntities = map[string]string{
	// Google
	"google-analytics.com":  "Google Analytics",
	"googletagmanager.com":  "Google Tag Manager",
	"doubleclick.net":       "Google/Doubleclick Ads",
	"googlesyndication.com": "Google/Doubleclick Ads",
	"googletagservices.com": "Google/Doubleclick Ads",
	"googleadservices.com":  "Google/Doubleclick Ads",
	"googleapis.com":        "Google CDN",
	"gstatic.com":           "Google CDN",
	"youtube.com":           "YouTube",
	"ytimg.com":             "YouTube",

	// Facebook
	"facebook.net": "Facebook",
	"facebook.com": "Facebook",
	"fbcdn.net":    "Facebook",

	// Adobe
	"omtrdc.net":   "Adobe Analytics",
	"demdex.net":   "Adobe Analytics",
	"adobedtm.com": "Adobe Tag Manager",

	// Ad networks and exchanges
	"amazon-adsystem.com": "Amazon Ads",
	"adsafeprotected.com": "Integral Ad Science",
	"criteo.com":          "Criteo",
	"criteo.net":          "Criteo",
	"rubiconproject.com":  "Rubicon Project",
	"pubmatic.com":        "Pubmatic",
	"adnxs.com":           "AppNexus",
	"taboola.com":         "Taboola",
	"outbrain.com":        "Outbrain",
	"moatads.com":         "Moat Ads",

	// Analytics and tag vendors
	"hotjar.com":            "Hotjar",
	"mixpanel.com":          "Mixpanel",
	"segment.com":           "Segment",
	"segment.io":            "Segment",
	"scorecardresearch.com": "comScore Analytics",
	"quantserve.com":        "Quantcast Analytics",
	"chartbeat.com":         "Chartbeat Analytics",
	"crazyegg.com":          "Crazy Egg Analytics",
	"nr-data.net":           "New Relic",
	"newrelic.com":          "New Relic",
	"sentry.io":             "Sentry",

	// Social
	"twitter.com":   "Twitter",
	"twimg.com":     "Twitter",
	"linkedin.com":  "LinkedIn",
	"licdn.com":     "LinkedIn",
	"pinterest.com": "Pinterest",

	// CDNs and infrastructure
	"cloudflare.com":         "Cloudflare CDN",
	"cloudflareinsights.com": "Cloudflare Insights",
	"jsdelivr.net":           "jsDelivr CDN",
	"unpkg.com":              "unpkg CDN",
	"jquery.com":             "jQuery CDN",
	"bootstrapcdn.com":       "Bootstrap CDN",
}

// entityName returns the display name for a registrable domain, falling
// back to the domain itself for unlisted third parties.
func entityName(domain string) string {
	if name, ok := knownEntities[domain]; ok {
		return name
	}
	return domain
}

// registrableDomain extracts the eTLD+1 of a raw URL, used to group
// requests belonging to the same entity and to tell first-party traffic
// apart from third-party traffic. It returns "" for URLs without a usable
// host (data:, about:blank). Hosts without a recognized public suffix
// (IP addresses, localhost) are returned as-is.
func registrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	// The public suffix list does not cover IP literals; grouping by the
	// address itself is the only sensible attribution for those.
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}
