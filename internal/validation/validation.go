package validation

import (
	"net/url"
	"strings"
)

// Platform-wide bid bounds in KRW. Policy caps live inside these.
const (
	FloorBid   = 70
	CeilingBid = 100000
)

// NormalizeKeyword folds case and strips all whitespace so duplicate
// detection matches the upstream's tolerance ("Running Shoes" equals
// "runningshoes").
func NormalizeKeyword(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), ""))
}

// ValidateKeywordText checks that a keyword is submittable at all.
func ValidateKeywordText(text string) bool {
	n := NormalizeKeyword(text)
	return n != "" && len(n) <= 100
}

// ValidateBidAmount checks a bid against the platform-wide bounds.
func ValidateBidAmount(bid int) bool {
	return bid >= FloorBid && bid <= CeilingBid
}

// ValidDevice normalizes a device hint for the estimate API; anything
// unrecognized falls back to MOBILE, where most search traffic is.
func ValidDevice(device string) string {
	switch strings.ToUpper(device) {
	case "PC":
		return "PC"
	case "MOBILE":
		return "MOBILE"
	default:
		return "MOBILE"
	}
}

// ClassifyVisit decides how a tracked visitor arrived. Ad clicks carry the
// paid keyword in an n_keyword or n_query query parameter; known
// search-engine referrers without one count as organic.
func ClassifyVisit(landingURL, referrer string) (visitType, keyword string) {
	keyword = "-"

	if strings.Contains(landingURL, "n_keyword") || strings.Contains(landingURL, "n_query") {
		if u, err := url.Parse(landingURL); err == nil {
			q := u.Query()
			if v := q.Get("n_keyword"); v != "" {
				keyword = v
			} else if v := q.Get("n_query"); v != "" {
				keyword = v
			}
		}
		return "AD", keyword
	}

	if strings.Contains(referrer, "naver.com") || strings.Contains(referrer, "google.com") {
		return "ORGANIC", keyword
	}

	return "DIRECT", keyword
}
