package pwa

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36"
	wpUA      = "Mozilla/5.0 (Mobile; Windows Phone 8.1; Android 4.0; ARM; Trident/7.0; Touch; rv:11.0; IEMobile/11.0; NOKIA; Lumia 635) like iPhone OS 7_0_3 Mac OS X AppleWebKit/537 (KHTML, like Gecko) Mobile Safari/537"
)

func TestIsIOS(t *testing.T) {
	assert.True(t, IsIOS(iphoneUA))
	assert.True(t, IsIOS("Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)"))
	assert.False(t, IsIOS(androidUA))
	assert.False(t, IsIOS(wpUA))
	assert.False(t, IsIOS(""))
}

func TestShouldShow(t *testing.T) {
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name       string
		ua         string
		standalone bool
		stored     string
		want       bool
	}{
		{"never dismissed", iphoneUA, false, "", true},
		{"dismissed 6 days ago", iphoneUA, false, DismissValue(now.Add(-6 * day)), false},
		{"dismissed 8 days ago", iphoneUA, false, DismissValue(now.Add(-8 * day)), true},
		{"garbage value", iphoneUA, false, "yesterday", true},
		{"installed", iphoneUA, true, "", false},
		{"android", androidUA, false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldShow(tt.ua, tt.standalone, tt.stored, now))
		})
	}
}

func requestWith(ua, stored string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("User-Agent", ua)
	if stored != "" {
		r.AddCookie(&http.Cookie{Name: DismissedKey, Value: stored})
	}
	return r
}

func TestForRequestFollowsDismissalCookie(t *testing.T) {
	dismissedAt := time.UnixMilli(0)
	day := 24 * time.Hour
	stored := DismissCookie(dismissedAt, false).Value
	assert.Equal(t, "0", stored)

	assert.True(t, ForRequest(requestWith(iphoneUA, ""), dismissedAt).Eligible)
	assert.False(t, ForRequest(requestWith(iphoneUA, stored), dismissedAt.Add(6*day)).Eligible)
	assert.True(t, ForRequest(requestWith(iphoneUA, stored), dismissedAt.Add(8*day)).Eligible)
	assert.False(t, ForRequest(requestWith(androidUA, ""), dismissedAt).Eligible)

	p := ForRequest(requestWith(iphoneUA, ""), dismissedAt)
	assert.Equal(t, "pwa-install-prompt-dismissed", p.StorageKey)
	assert.Equal(t, "/pwa/dismiss", p.DismissPath)
	assert.Equal(t, int64(3000), p.DelayMS)
	assert.Equal(t, int64(3600000), p.UpdateMS)
	assert.Equal(t, "/sw.js", p.WorkerPath)
}

func TestDismissCookie(t *testing.T) {
	c := DismissCookie(time.UnixMilli(1700000000000), true)
	assert.Equal(t, DismissedKey, c.Name)
	assert.Equal(t, "1700000000000", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.Secure)
	assert.Greater(t, time.Duration(c.MaxAge)*time.Second, DismissWindow)
}
