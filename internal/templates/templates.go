// Package templates renders the portal's pages as templ components over
// embedded html/template files.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/studioleflow/portal/internal/imagebatch"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/pwa"
	"github.com/studioleflow/portal/internal/validation"
	"github.com/studioleflow/portal/internal/views"
)

//go:embed html/*.html
var files embed.FS

var pages = template.Must(template.New("portal").Funcs(Funcs()).ParseFS(files, "html/*.html"))

// view wraps one named template as a component
func view(name string, data any) templ.Component {
	t := pages.Lookup(name)
	if t == nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return fmt.Errorf("template %q not found", name)
		})
	}
	return templ.FromGoHTML(t, data)
}

// Shell is the chrome around every full page
type Shell struct {
	// Bare hides the navigation, used by the maintenance gate
	Bare   bool
	Title  string
	Path   string
	User   *models.User
	Toasts []models.Toast
	PWA    pwa.Prompt
}

type layoutData struct {
	Shell
	Body template.HTML
}

// Layout renders body inside the document shell
func Layout(s Shell, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}
		return view("layout", layoutData{Shell: s, Body: html}).Render(ctx, w)
	})
}

func Dashboard(d views.Dashboard) templ.Component { return view("dashboard", d) }

// DashboardSection renders one section for polling and retries
func DashboardSection(name string, d views.Dashboard) templ.Component {
	return view("section-"+name, d)
}

func Songs(s views.Songs) templ.Component { return view("songs", s) }

func SongList(s views.Songs) templ.Component { return view("song-list", s) }

func Inbox(in views.Inbox) templ.Component { return view("inbox", in) }

func Conversations(in views.Inbox) templ.Component { return view("conversation-list", in) }

func Messages(in views.Inbox) templ.Component { return view("messages", in) }

// Denied is shown instead of a protected page; resources are never read for it
type Denied struct {
	NeedsVerification bool
}

func AccessDenied(d Denied) templ.Component { return view("denied", d) }

// LoginPage is the portal sign-in form
type LoginPage struct {
	Action string
	Form   validation.LoginForm
	Errors validation.FieldErrors
}

func Login(p LoginPage) templ.Component { return view("login", p) }

// MaintenancePage is the gate with its hidden admin login dialog
type MaintenancePage struct {
	DialogOpen bool
	Login      LoginPage
}

func Maintenance(p MaintenancePage) templ.Component { return view("maintenance", p) }

// HomePage lists the marketing galleries
type HomePage struct {
	Hero      imagebatch.Item
	HeroURL   string
	Services  []Tile
	Equipment []Tile
	Software  []Tile
}

// Tile is one gallery image
type Tile struct {
	Label string
	URL   string
}

func Home(p HomePage) templ.Component { return view("home", p) }

// NewHomePage derives the galleries from the image presets
func NewHomePage() HomePage {
	eq, sv := imagebatch.Equipment, imagebatch.Services
	p := HomePage{}
	if hero := eq.Group(1920, 1080); len(hero) > 0 {
		p.Hero, p.HeroURL = hero[0], eq.URL(hero[0])
	}
	p.Services = tiles(sv, sv.Items)
	p.Equipment = tiles(eq, eq.Group(800, 1000))
	p.Software = tiles(eq, eq.Group(1200, 675))
	return p
}

func tiles(p imagebatch.Preset, items []imagebatch.Item) []Tile {
	out := make([]Tile, 0, len(items))
	for _, it := range items {
		out = append(out, Tile{Label: it.Label, URL: p.URL(it)})
	}
	return out
}

func NotFound() templ.Component { return view("notfound", nil) }
