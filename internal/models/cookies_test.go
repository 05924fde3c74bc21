package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieBundle_Valid(t *testing.T) {
	assert.False(t, (&CookieBundle{}).Valid())
	assert.False(t, (*CookieBundle)(nil).Valid())
	assert.True(t, (&CookieBundle{LiAt: "tok"}).Valid())
}

func TestCookieBundle_Cookies_OmitsEmptyFields(t *testing.T) {
	bundle := &CookieBundle{LiAt: "tok", Lidc: "b=OB74"}

	cookies := bundle.Cookies(".linkedin.com")
	require.Len(t, cookies, 2)
	assert.Equal(t, CookieSessionToken, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.Equal(t, CookieDataCenter, cookies[1].Name)
	for _, c := range cookies {
		assert.Equal(t, ".linkedin.com", c.Domain)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.Secure)
		assert.True(t, c.HTTPOnly)
		assert.Zero(t, c.Expires)
	}
}

func TestBundleFromCookies_IgnoresUnknownEntries(t *testing.T) {
	bundle := BundleFromCookies([]BrowserCookie{
		{Name: "bcookie", Value: "noise"},
		{Name: CookieSessionToken, Value: "tok"},
		{Name: CookieCSRFCarrier, Value: `"ajax:1"`},
	})

	assert.Equal(t, "tok", bundle.LiAt)
	assert.Equal(t, `"ajax:1"`, bundle.JSessionID)
	assert.Empty(t, bundle.Lidc)
	assert.Empty(t, bundle.LiRm)
}
