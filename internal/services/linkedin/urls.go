package linkedin

import "strings"

// Fixed target-site URLs. These are versioned by observation: they describe
// the site's current layout and are expected to break when it changes.
const (
	// CookieDomain scopes injected session cookies.
	CookieDomain = ".linkedin.com"

	// FeedURL is the authenticated landing page.
	FeedURL = "https://www.linkedin.com/feed/"

	// LoginURL is the credential login form.
	LoginURL = "https://www.linkedin.com/login"

	// ContentAnalyticsURL is the post-performance chart page.
	ContentAnalyticsURL = "https://www.linkedin.com/analytics/creator/content/"

	// AudienceAnalyticsURL is the follower-growth chart page.
	AudienceAnalyticsURL = "https://www.linkedin.com/analytics/creator/audience/"

	// DemographicsURL is the follower-demographics section of the audience
	// page.
	DemographicsURL = "https://www.linkedin.com/analytics/creator/audience/?section=demographics"
)

// Login form selectors and the landing-page landmark used to validate an
// authenticated session.
const (
	usernameSelector    = "#username"
	passwordSelector    = "#password"
	submitSelector      = `button[type="submit"]`
	mainContentSelector = "main"
)

// wallmarkers are URL substrings indicating the session was bounced to a
// login, signup, or security-challenge wall.
var wallMarkers = []string{
	"/authwall",
	"/checkpoint",
	"/uas/login",
	"/login",
	"/signup",
}

// challengeMarkers identify security-challenge/checkpoint interstitials
// specifically, as opposed to a plain login redirect.
var challengeMarkers = []string{
	"/checkpoint",
	"/challenge",
}

// IsWallURL reports whether the URL indicates a blocked, unauthenticated
// session.
func IsWallURL(url string) bool {
	for _, marker := range wallMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}

// IsChallengeURL reports whether the URL indicates a security challenge that
// a human can clear interactively.
func IsChallengeURL(url string) bool {
	for _, marker := range challengeMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}

// IsFeedURL reports whether the URL is the authenticated landing page.
func IsFeedURL(url string) bool {
	return strings.HasPrefix(url, FeedURL) ||
		strings.HasPrefix(url, "https://www.linkedin.com/feed")
}
