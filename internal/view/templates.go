// Package view renders the console's embedded HTML templates.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stockroom/console/internal/shared"
	"github.com/stockroom/console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Data        any
}

// NavItem is one sidebar entry.
type NavItem struct {
	Label string
	Path  string
}

// Navigation lists the sidebar entries in display order.
var Navigation = []NavItem{
	{Label: "Products", Path: "/products"},
	{Label: "Categories", Path: "/categories"},
	{Label: "Subcategories", Path: "/subcategories"},
	{Label: "Brands", Path: "/brands"},
	{Label: "Attributes", Path: "/attributes"},
	{Label: "Suppliers", Path: "/suppliers"},
	{Label: "Purchase Orders", Path: "/purchase-orders"},
	{Label: "Warehouses", Path: "/warehouses"},
	{Label: "Stock Movements", Path: "/stock-movements"},
	{Label: "Customers", Path: "/customers"},
}

// Capitalize upper-cases the first letter of each word, e.g. "weight" to "Weight".
// A Caser keeps state between calls, so each call builds its own.
func Capitalize(s string) string {
	return cases.Title(language.English).String(s)
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"capitalize": Capitalize,
		"nav":        func() []NavItem { return Navigation },
		"active": func(current, path string) bool {
			return current == path || strings.HasPrefix(current, path+"/")
		},
		"add":  func(a, b int) int { return a + b },
		"dict": dict,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// dict builds a map from alternating keys and values so partials can take
// several arguments.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// Render executes a named template and writes it with status. The page is
// buffered so a template failure becomes a 500 instead of a truncated body.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
