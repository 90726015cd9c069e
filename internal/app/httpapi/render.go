package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/i18n"
	"github.com/R3E-Network/petclinic/internal/errors"
)

//go:embed templates static
var assets embed.FS

// Pages rendered by the handlers, relative to templates/.
const (
	pageWelcome      = "welcome.html"
	pageError        = "error.html"
	pageFindOwners   = "owners/find.html"
	pageOwnerList    = "owners/list.html"
	pageOwnerDetails = "owners/details.html"
	pageOwnerForm    = "owners/form.html"
	pagePetForm      = "pets/form.html"
	pageVisitForm    = "visits/form.html"
	pageVetList      = "vets/list.html"
)

var pageNames = []string{
	pageWelcome, pageError, pageFindOwners, pageOwnerList, pageOwnerDetails,
	pageOwnerForm, pagePetForm, pageVisitForm, pageVetList,
}

// view is the data every page template receives.
type view struct {
	// Menu names the highlighted navigation entry.
	Menu   string
	Flash  string
	L      *i18n.Localizer
	Errors map[string]string
	Data   any
}

// input describes one labelled form control.
type input struct {
	Name  string
	Label string
	Value string
	Kind  string
	Error string
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(owner.DateLayout)
	},
	"field": func(v view, name, labelKey, value, kind string) input {
		return input{Name: name, Label: v.L.T(labelKey), Value: value, Kind: kind, Error: v.Errors[name]}
	},
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(assets,
			"templates/layout.html",
			"templates/fragments.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// render executes the page into a buffer first so a template failure can
// still be answered with an error envelope.
func (rd *renderer) render(w http.ResponseWriter, status int, name string, v view) error {
	tmpl, ok := rd.pages[name]
	if !ok {
		return errors.Template(fmt.Errorf("unknown template %s", name))
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		return errors.Template(err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
