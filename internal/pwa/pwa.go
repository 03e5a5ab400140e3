// pwa/pwa.go - iOS install prompt rules and service worker constants
package pwa

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DismissedKey names the cookie (and its localStorage mirror) holding the
	// dismissal time in epoch ms
	DismissedKey   = "pwa-install-prompt-dismissed"
	DismissPath    = "/pwa/dismiss"
	DismissWindow  = 7 * 24 * time.Hour
	ShowDelay      = 3 * time.Second
	UpdateInterval = time.Hour
	WorkerPath     = "/sw.js"
	WorkerScope    = "/"
)

var iosDevice = regexp.MustCompile(`iPad|iPhone|iPod`)

// IsIOS matches iPad, iPhone and iPod user agents. Windows Phone IE also claims
// to be an iPhone; browsers there expose MSStream, which we see as IEMobile.
func IsIOS(userAgent string) bool {
	return iosDevice.MatchString(userAgent) && !strings.Contains(userAgent, "IEMobile")
}

// Dismissed reports whether a stored dismissal still suppresses the prompt
func Dismissed(stored string, now time.Time) bool {
	if stored == "" {
		return false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(stored), 10, 64)
	if err != nil {
		return false
	}
	return now.Sub(time.UnixMilli(ms)) <= DismissWindow
}

// ShouldShow is the full predicate evaluated after ShowDelay
func ShouldShow(userAgent string, standalone bool, stored string, now time.Time) bool {
	return IsIOS(userAgent) && !standalone && !Dismissed(stored, now)
}

// DismissValue is what the dismiss action writes under DismissedKey
func DismissValue(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// DismissCookie records a dismissal made at now. The cookie outlives the
// window; Dismissed decides whether it still applies.
func DismissCookie(now time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     DismissedKey,
		Value:    DismissValue(now),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Prompt carries the decision and the constants the browser side needs
type Prompt struct {
	Eligible    bool
	StorageKey  string
	DismissPath string
	DelayMS     int64
	UpdateMS    int64
	WorkerPath  string
	WorkerScope string
}

// ForRequest decides the prompt from the user agent and the dismissal cookie.
// Only the browser knows whether it runs standalone, so that check stays there.
func ForRequest(r *http.Request, now time.Time) Prompt {
	stored := ""
	if c, err := r.Cookie(DismissedKey); err == nil {
		stored = c.Value
	}
	return Prompt{
		Eligible:    ShouldShow(r.UserAgent(), false, stored, now),
		StorageKey:  DismissedKey,
		DismissPath: DismissPath,
		DelayMS:     ShowDelay.Milliseconds(),
		UpdateMS:    UpdateInterval.Milliseconds(),
		WorkerPath:  WorkerPath,
		WorkerScope: WorkerScope,
	}
}
