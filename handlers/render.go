package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templatesFS embed.FS

type views struct {
	pages map[string]*template.Template
}

var pageNames = []string{
	"login.html",
	"register.html",
	"home.html",
	"order.html",
	"confirm_order.html",
	"reserve.html",
	"admin_dashboard.html",
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

func loadViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

type page struct {
	Title    string
	Name     string
	LoggedIn bool
	IsAdmin  bool
	Error    string
	Success  string
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, p page) {
	t, ok := h.views.pages[name]
	if !ok {
		h.serverError(w, fmt.Errorf("unknown template %s", name), "failed to render page")
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		h.serverError(w, err, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
