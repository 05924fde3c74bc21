package models

// Cookie names the bundle maps onto the target site's session cookies.
const (
	CookieSessionToken = "li_at"
	CookieCSRFCarrier  = "JSESSIONID"
	CookieDataCenter   = "lidc"
	CookieRememberMe   = "li_rm"
)

// CookieBundle is the minimal set of session-identifying tokens required to
// present an authenticated browser session to the target site. LiAt is
// required; the rest are carried when present. Rewritten in full after every
// successful authentication.
type CookieBundle struct {
	LiAt       string `json:"li_at"`
	JSessionID string `json:"JSESSIONID,omitempty"`
	Lidc       string `json:"lidc,omitempty"`
	LiRm       string `json:"li_rm,omitempty"`
}

// Valid reports whether the bundle carries the required session token.
func (b *CookieBundle) Valid() bool {
	return b != nil && b.LiAt != ""
}

// Cookies expands the bundle into generic cookie records scoped to the target
// site's domain, with session-lifetime expiry. Optional fields that are empty
// are omitted.
func (b *CookieBundle) Cookies(domain string) []BrowserCookie {
	var cookies []BrowserCookie
	add := func(name, value string) {
		if value == "" {
			return
		}
		cookies = append(cookies, BrowserCookie{
			Name:     name,
			Value:    value,
			Domain:   domain,
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
		})
	}
	add(CookieSessionToken, b.LiAt)
	add(CookieCSRFCarrier, b.JSessionID)
	add(CookieDataCenter, b.Lidc)
	add(CookieRememberMe, b.LiRm)
	return cookies
}

// BrowserCookie is a generic browser cookie record. It is both the element of
// the array-shaped bundle file (browser exports) and the shape of a live
// cookie-jar dump. Expires is a Unix timestamp; zero means session lifetime.
type BrowserCookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Expires  int64  `json:"expirationDate,omitempty"`
	SameSite string `json:"sameSite,omitempty"`
}

// BundleFromCookies extracts the four logical bundle fields from a generic
// cookie list by name lookup. Unknown entries are ignored.
func BundleFromCookies(cookies []BrowserCookie) *CookieBundle {
	bundle := &CookieBundle{}
	for _, c := range cookies {
		switch c.Name {
		case CookieSessionToken:
			bundle.LiAt = c.Value
		case CookieCSRFCarrier:
			bundle.JSessionID = c.Value
		case CookieDataCenter:
			bundle.Lidc = c.Value
		case CookieRememberMe:
			bundle.LiRm = c.Value
		}
	}
	return bundle
}
