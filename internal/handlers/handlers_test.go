package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/payments"
	"github.com/studioleflow/portal/internal/pwa"
	"github.com/studioleflow/portal/internal/querycache"
	"github.com/studioleflow/portal/internal/store"
)

const (
	visitor    = "0b5c1f0e-3f7a-4c51-9d0e-2a4b6c8d0e1f"
	sidCookie  = "connect.sid"
	verified   = "sid-verified"
	unverified = "sid-unverified"
)

type fakeBackend struct {
	mu        sync.Mutex
	calls     map[string]int
	songs     []models.UserSong
	submitErr error
	block     chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: map[string]int{}}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) SessionFrom(r *http.Request) api.Session {
	if c, err := r.Cookie(sidCookie); err == nil {
		return api.Session{Cookie: c.Value}
	}
	return api.Session{}
}

func (f *fakeBackend) CookieName() string { return sidCookie }

func (f *fakeBackend) CurrentUser(_ context.Context, s api.Session) (*models.User, error) {
	f.hit("user")
	switch s.Cookie {
	case verified:
		return &models.User{ID: 3, Username: "marko", EmailVerified: true, Role: models.RoleUser}, nil
	case unverified:
		return &models.User{ID: 4, Username: "ana", Role: models.RoleUser}, nil
	}
	return nil, nil
}

func (f *fakeBackend) Logout(context.Context, api.Session) error { f.hit("logout"); return nil }

func (f *fakeBackend) Overview(context.Context, api.Session) (models.DashboardOverview, error) {
	f.hit("overview")
	return models.DashboardOverview{TotalAmountPending: "0"}, nil
}

func (f *fakeBackend) Projects(ctx context.Context, _ api.Session) ([]models.Project, error) {
	f.hit("projects")
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []models.Project{{ID: 1, Title: "Demo", Status: models.ProjectInProgress}}, nil
}

func (f *fakeBackend) Contracts(context.Context, api.Session) ([]models.Contract, error) {
	f.hit("contracts")
	return nil, nil
}

func (f *fakeBackend) Invoices(context.Context, api.Session) ([]models.Invoice, error) {
	f.hit("invoices")
	return []models.Invoice{{ID: 4, InvoiceNumber: "F-4", Amount: "12500", Currency: "RSD",
		Status: models.InvoicePending, DueDate: time.Now().Add(24 * time.Hour)}}, nil
}

func (f *fakeBackend) Songs(context.Context, api.Session) ([]models.UserSong, error) {
	f.hit("songs")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.UserSong(nil), f.songs...), nil
}

func (f *fakeBackend) Conversations(context.Context, api.Session) ([]models.Conversation, error) {
	f.hit("conversations")
	return nil, nil
}

func (f *fakeBackend) Conversation(context.Context, api.Session, int64) ([]models.Message, error) {
	f.hit("conversation")
	return nil, nil
}

func (f *fakeBackend) SubmitSong(_ context.Context, _ api.Session, s models.NewSong) (*models.UserSong, error) {
	f.hit("submit")
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	song := models.UserSong{ID: 10, SongTitle: s.SongTitle, ArtistName: s.ArtistName, YoutubeURL: s.YoutubeURL}
	f.mu.Lock()
	f.songs = append(f.songs, song)
	f.mu.Unlock()
	return &song, nil
}

func (f *fakeBackend) DeleteSong(_ context.Context, _ api.Session, id int64) error {
	f.hit("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.songs[:0]
	for _, s := range f.songs {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.songs = kept
	return nil
}

func (f *fakeBackend) SendMessage(_ context.Context, _ api.Session, m models.NewMessage) (*models.Message, error) {
	f.hit("send")
	return &models.Message{ID: 1, ReceiverID: m.ReceiverID, Content: m.Content}, nil
}

func (f *fakeBackend) Login(_ context.Context, c models.Credentials) (*models.User, []*http.Cookie, error) {
	f.hit("login")
	if c.Password != "tajnalozinka" {
		return nil, nil, &api.Error{Kind: api.KindUnknown, Status: http.StatusUnauthorized, Message: "Pogrešna lozinka", FromServer: true}
	}
	return &models.User{ID: 1, Username: c.Username, EmailVerified: true, Role: models.RoleAdmin},
		[]*http.Cookie{{Name: sidCookie, Value: verified, Domain: "api.internal"}}, nil
}

type fakeCheckout struct{ got payments.Checkout }

func (f *fakeCheckout) CreateCheckout(_ context.Context, c payments.Checkout) (string, error) {
	f.got = c
	return "https://checkout.stripe.com/c/pay/cs_test_1", nil
}

type fakeWebhooks struct{ done *payments.Completed }

func (f fakeWebhooks) ParseEvent(_ []byte, sig string) (*payments.Completed, error) {
	if sig != "good" {
		return nil, errors.New("bad signature")
	}
	return f.done, nil
}

type env struct {
	t      *testing.T
	be     *fakeBackend
	cache  *querycache.Cache
	store  store.Store
	h      *Handler
	router http.Handler
}

func newEnv(t *testing.T, maintenance bool) *env {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "portal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	be := newFakeBackend()
	cache := querycache.New(querycache.Options{StaleTime: time.Minute})
	h := New(be, cache, st, gate.New(maintenance, st, zap.NewNop()), Options{
		RenderWait: 200 * time.Millisecond,
		PublicURL:  "https://portal.test",
		Checkout:   &fakeCheckout{},
		Webhooks:   fakeWebhooks{done: &payments.Completed{SessionID: "cs_1", InvoiceID: 4}},
	})
	return &env{t: t, be: be, cache: cache, store: st, h: h,
		router: h.Router(RouterOptions{StaticDir: t.TempDir(), AssetRoot: t.TempDir()})}
}

func (e *env) do(method, path, sid string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: visitor})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: sidCookie, Value: sid})
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestAnonymousVisitorIsDeniedEvenWithWarmCache(t *testing.T) {
	e := newEnv(t, false)
	e.cache.Prime(querycache.Key{Scope: visitor, Path: api.KeySongs},
		[]models.UserSong{{ID: 1, SongTitle: "Tajna pesma"}})

	rec := e.do(http.MethodGet, "/moje-pesme", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pristup Odbijen")
	assert.Contains(t, rec.Body.String(), `href="/auth"`)
	assert.NotContains(t, rec.Body.String(), "Tajna pesma")
	assert.Zero(t, e.be.count("songs"))
}

func TestInboxRequiresVerifiedEmail(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(http.MethodGet, "/inbox", unverified, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "verifikovati email")
	assert.Zero(t, e.be.count("conversations"))

	rec = e.do(http.MethodGet, "/inbox", verified, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.be.count("conversations"))
}

func TestSubmitSongValidationSkipsBackend(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(http.MethodPost, "/moje-pesme", verified, url.Values{
		"songTitle":  {"ab"},
		"artistName": {"Marko"},
		"youtubeUrl": {"https://youtu.be/dQw4w9WgXcQ"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Naslov pesme mora imati najmanje 3 karaktera")
	assert.Zero(t, e.be.count("submit"))
}

func TestSubmitSongKeepsInputAsTyped(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(http.MethodPost, "/moje-pesme", verified, url.Values{
		"songTitle":  {"  ab  "},
		"artistName": {"Marko"},
		"youtubeUrl": {"https://youtu.be/dQw4w9WgXcQ"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, e.be.songs, 1)
	assert.Equal(t, "  ab  ", e.be.songs[0].SongTitle)
}

func TestSubmitSongRateLimited(t *testing.T) {
	e := newEnv(t, false)
	e.be.submitErr = &api.Error{Kind: api.KindRateLimited, Status: http.StatusTooManyRequests,
		Message: "Možete poslati novu pesmu za 12 sati", HoursRemaining: 12, FromServer: true}

	rec := e.do(http.MethodPost, "/moje-pesme", verified, url.Values{
		"songTitle":  {"Noćna vožnja"},
		"artistName": {"Marko"},
		"youtubeUrl": {"https://youtu.be/dQw4w9WgXcQ"},
	})

	body := rec.Body.String()
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, body, "Sačekajte")
	assert.Contains(t, body, "Možete poslati novu pesmu za 12 sati")
	assert.Contains(t, body, `value="Noćna vožnja"`, "dialog keeps the input")
}

func TestSubmitSongSuccessRedirectsAndRefreshes(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(http.MethodGet, "/moje-pesme", verified, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.be.count("songs"))

	rec = e.do(http.MethodPost, "/moje-pesme", verified, url.Values{
		"songTitle":  {"Noćna vožnja"},
		"artistName": {"Marko"},
		"youtubeUrl": {"https://youtu.be/dQw4w9WgXcQ"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/moje-pesme", rec.Header().Get("Location"))

	rec = e.do(http.MethodGet, "/moje-pesme", verified, nil)
	assert.Equal(t, 2, e.be.count("songs"), "the list is fetched again after submit")
	assert.Contains(t, rec.Body.String(), "Pesma dodata")
	assert.Contains(t, rec.Body.String(), "Noćna vožnja")
	assert.NotContains(t, rec.Body.String(), `role="dialog"`)
}

func TestDeleteSongInvalidatesList(t *testing.T) {
	e := newEnv(t, false)
	e.be.songs = []models.UserSong{
		{ID: 1, SongTitle: "Prva", YoutubeURL: "https://youtu.be/dQw4w9WgXcQ"},
		{ID: 2, SongTitle: "Druga", YoutubeURL: "https://youtu.be/dQw4w9WgXcQ"},
	}

	rec := e.do(http.MethodGet, "/moje-pesme?delete=2", verified, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/moje-pesme/2/delete"`)

	rec = e.do(http.MethodPost, "/moje-pesme/2/delete", verified, url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, e.be.count("delete"))

	rec = e.do(http.MethodGet, "/moje-pesme", verified, nil)
	body := rec.Body.String()
	assert.Equal(t, 2, e.be.count("songs"))
	assert.Contains(t, body, "Prva")
	assert.NotContains(t, body, "Druga")
	assert.Contains(t, body, "Pesma obrisana")
}

func TestDashboardSectionPollsWhileLoading(t *testing.T) {
	e := newEnv(t, false)
	e.be.block = make(chan struct{})
	defer close(e.be.block)

	rec := e.do(http.MethodGet, "/dashboard", verified, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hx-get="/dashboard/sections/projects"`)
	assert.NotContains(t, body, `hx-get="/dashboard/sections/invoices"`)
	assert.Contains(t, body, "12.500,00 RSD")
}

func TestMaintenanceGate(t *testing.T) {
	e := newEnv(t, true)

	rec := e.do(http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sajt je u pripremi")

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", "", nil).Code)

	rec = e.do(http.MethodPost, "/maintenance/login", "", url.Values{"username": {"admin"}, "password": {"pogresna1"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Greška pri prijavljivanju")
	assert.Contains(t, rec.Body.String(), "Pogrešna lozinka")
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/", "", nil).Code)

	rec = e.do(http.MethodPost, "/maintenance/login", "", url.Values{"username": {"admin"}, "password": {"tajnalozinka"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	var relayed *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sidCookie {
			relayed = c
		}
	}
	require.NotNil(t, relayed)
	assert.Equal(t, verified, relayed.Value)
	assert.Empty(t, relayed.Domain)

	rec = e.do(http.MethodGet, "/", verified, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Prijavili ste se kao admin.")
}

func TestWebhookInvalidatesInvoicesForEveryVisitor(t *testing.T) {
	e := newEnv(t, false)
	keys := []querycache.Key{
		{Scope: visitor, Path: api.KeyInvoices},
		{Scope: "other", Path: api.KeyInvoices},
	}
	for _, k := range keys {
		e.cache.Prime(k, []models.Invoice{})
	}

	req := httptest.NewRequest(http.MethodPost, "/webhook/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "bad")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhook/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "good")
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, k := range keys {
		fetched := false
		querycache.LoadList(context.Background(), e.cache, k, 0, func(context.Context) ([]models.Invoice, error) {
			fetched = true
			return nil, nil
		})
		assert.True(t, fetched, k.Scope)
	}
}

func TestPayInvoiceRedirectsToCheckout(t *testing.T) {
	e := newEnv(t, false)

	rec := e.do(http.MethodPost, "/invoices/4/pay", verified, url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", rec.Header().Get("Location"))

	got := e.h.Checkout.(*fakeCheckout).got
	assert.Equal(t, int64(4), got.InvoiceID)
	assert.Equal(t, "12500", got.Amount)
	assert.Equal(t, "https://portal.test/dashboard?payment=success", got.SuccessURL)

	rec = e.do(http.MethodPost, "/invoices/99/pay", verified, url.Values{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogoutForgetsVisitorData(t *testing.T) {
	e := newEnv(t, false)
	e.do(http.MethodGet, "/moje-pesme", verified, nil)
	_, ok := querycache.Peek[[]models.UserSong](e.cache, querycache.Key{Scope: visitor, Path: api.KeySongs})
	require.True(t, ok)

	rec := e.do(http.MethodPost, "/logout", verified, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 1, e.be.count("logout"))
	_, ok = querycache.Peek[[]models.UserSong](e.cache, querycache.Key{Scope: visitor, Path: api.KeySongs})
	assert.False(t, ok)
}

func TestInstallPromptHonoursDismissal(t *testing.T) {
	e := newEnv(t, true)
	const iphone = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1"
	get := func(dismissed string) string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", iphone)
		req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: visitor})
		if dismissed != "" {
			req.AddCookie(&http.Cookie{Name: pwa.DismissedKey, Value: dismissed})
		}
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		return rec.Body.String()
	}
	day := 24 * time.Hour

	assert.Contains(t, get(""), `id="pwa-install-prompt"`, "shown on the maintenance page too")

	req := httptest.NewRequest(http.MethodPost, pwa.DismissPath, nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	var stored string
	for _, c := range rec.Result().Cookies() {
		if c.Name == pwa.DismissedKey {
			stored = c.Value
		}
	}
	require.NotEmpty(t, stored)

	assert.NotContains(t, get(stored), `id="pwa-install-prompt"`)
	assert.NotContains(t, get(pwa.DismissValue(time.Now().Add(-6*day))), `id="pwa-install-prompt"`)
	assert.Contains(t, get(pwa.DismissValue(time.Now().Add(-8*day))), `id="pwa-install-prompt"`)
}

func TestNotFoundAndVisitorCookie(t *testing.T) {
	e := newEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/ne-postoji", nil)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stranica nije pronađena")
	var vid string
	for _, c := range rec.Result().Cookies() {
		if c.Name == VisitorCookie {
			vid = c.Value
		}
	}
	assert.Len(t, vid, 36)
}
