// templates/funcs.go - Template helpers
package templates

import (
	"html"
	"html/template"
	"strings"

	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/validation"
)

// Funcs returns the helper functions available to every template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"img":        ImageAttrs,
		"fieldError": fieldError,
		"toastClass": toastClass,
		"initial": func(s string) string {
			if s == "" {
				return "?"
			}
			return strings.ToUpper(string([]rune(s)[:1]))
		},
	}
}

// ImageAttrs renders img attributes. Priority images load eagerly with high
// fetch priority and default to full-width sizes; others are lazy.
func ImageAttrs(src, alt string, priority bool, sizes string) template.HTMLAttr {
	var b strings.Builder
	attr := func(k, v string) {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(v))
		b.WriteString(`"`)
	}
	attr("src", src)
	attr("alt", alt)
	if priority {
		attr("loading", "eager")
		attr("decoding", "sync")
		attr("fetchpriority", "high")
		if sizes == "" {
			sizes = "100vw"
		}
	} else {
		attr("loading", "lazy")
		attr("decoding", "async")
	}
	if sizes != "" {
		attr("sizes", sizes)
	}
	attr("draggable", "false")
	return template.HTMLAttr(strings.TrimPrefix(b.String(), " "))
}

func fieldError(errs validation.FieldErrors, field string) string {
	return errs[field]
}

func toastClass(v models.ToastVariant) string {
	if v == models.ToastDestructive {
		return "toast toast-destructive"
	}
	return "toast"
}
