// api/client.go - REST client for the studio backend
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/studioleflow/portal/internal/models"
)

// Resource keys. They double as the backend paths.
const (
	KeyUser          = "/api/user"
	KeyOverview      = "/api/dashboard/overview"
	KeyProjects      = "/api/user/projects"
	KeyContracts     = "/api/user/contracts"
	KeyInvoices      = "/api/user/invoices"
	KeySongs         = "/api/user-songs"
	KeyConversations = "/api/messages/conversations"
)

// KeyConversation is the resource key of one thread
func KeyConversation(userID int64) string {
	return "/api/messages/conversation/" + strconv.FormatInt(userID, 10)
}

// Session identifies the visitor to the backend. The zero value is anonymous.
type Session struct {
	Cookie string
}

// Client talks to the backend on behalf of one visitor per call
type Client struct {
	baseURL    string
	cookieName string
	http       *http.Client
}

// New creates a client; timeout bounds every call
func New(baseURL, cookieName string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cookieName: cookieName,
		http:       &http.Client{Timeout: timeout},
	}
}

// CookieName of the backend session cookie relayed to the browser
func (c *Client) CookieName() string { return c.cookieName }

// SessionFrom picks the backend session cookie off an incoming request
func (c *Client) SessionFrom(r *http.Request) Session {
	if ck, err := r.Cookie(c.cookieName); err == nil {
		return Session{Cookie: ck.Value}
	}
	return Session{}
}

// CurrentUser returns nil without error when the session is anonymous or expired
func (c *Client) CurrentUser(ctx context.Context, s Session) (*models.User, error) {
	if s.Cookie == "" {
		return nil, nil
	}
	var u models.User
	resp, err := c.do(ctx, s, http.MethodGet, KeyUser, nil, &u)
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Overview(ctx context.Context, s Session) (models.DashboardOverview, error) {
	var o models.DashboardOverview
	_, err := c.do(ctx, s, http.MethodGet, KeyOverview, nil, &o)
	return o, err
}

func (c *Client) Projects(ctx context.Context, s Session) ([]models.Project, error) {
	var out []models.Project
	_, err := c.do(ctx, s, http.MethodGet, KeyProjects, nil, &out)
	return out, err
}

func (c *Client) Contracts(ctx context.Context, s Session) ([]models.Contract, error) {
	var out []models.Contract
	_, err := c.do(ctx, s, http.MethodGet, KeyContracts, nil, &out)
	return out, err
}

func (c *Client) Invoices(ctx context.Context, s Session) ([]models.Invoice, error) {
	var out []models.Invoice
	_, err := c.do(ctx, s, http.MethodGet, KeyInvoices, nil, &out)
	return out, err
}

func (c *Client) Songs(ctx context.Context, s Session) ([]models.UserSong, error) {
	var out []models.UserSong
	_, err := c.do(ctx, s, http.MethodGet, KeySongs, nil, &out)
	return out, err
}

func (c *Client) Conversations(ctx context.Context, s Session) ([]models.Conversation, error) {
	var out []models.Conversation
	_, err := c.do(ctx, s, http.MethodGet, KeyConversations, nil, &out)
	return out, err
}

func (c *Client) Conversation(ctx context.Context, s Session, userID int64) ([]models.Message, error) {
	var out []models.Message
	_, err := c.do(ctx, s, http.MethodGet, KeyConversation(userID), nil, &out)
	return out, err
}

// SubmitSong creates a song; the backend enforces one submission per 36 hours
func (c *Client) SubmitSong(ctx context.Context, s Session, song models.NewSong) (*models.UserSong, error) {
	var out models.UserSong
	if _, err := c.do(ctx, s, http.MethodPost, KeySongs, song, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSong(ctx context.Context, s Session, id int64) error {
	_, err := c.do(ctx, s, http.MethodDelete, KeySongs+"/"+strconv.FormatInt(id, 10), struct{}{}, nil)
	return err
}

func (c *Client) SendMessage(ctx context.Context, s Session, msg models.NewMessage) (*models.Message, error) {
	var out models.Message
	if _, err := c.do(ctx, s, http.MethodPost, "/api/messages/send", msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login returns the authenticated user and the cookies the browser must receive
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.User, []*http.Cookie, error) {
	var u models.User
	resp, err := c.do(ctx, Session{}, http.MethodPost, "/api/login", creds, &u)
	if err != nil {
		return nil, nil, err
	}
	return &u, resp.Cookies(), nil
}

func (c *Client) Logout(ctx context.Context, s Session) error {
	_, err := c.do(ctx, s, http.MethodPost, "/api/logout", struct{}{}, nil)
	return err
}

// do performs one JSON round trip. The response is returned even on API errors.
func (c *Client) do(ctx context.Context, s Session, method, path string, in, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Cookie != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: s.Cookie})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, transportError("read "+path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, classify(resp.StatusCode, raw)
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp, transportError("decode "+path, err)
		}
	}
	return resp, nil
}
