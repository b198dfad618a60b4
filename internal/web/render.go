package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/dashdoc/webmanager/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"count":   view.FormatCount,
	"percent": view.FormatPercent,
	"date":    view.FormatDate,
	"join":    strings.Join,
	"json": func(v any) string {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err.Error()
		}
		return string(data)
	},
	"add": func(a, b int) int { return a + b },
}

// pages maps a page name to its template set (layout plus the page)
type pages map[string]*template.Template

func loadPages() (pages, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	out := make(pages)
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		out[strings.TrimSuffix(base, ".html")] = t
	}
	return out, nil
}

// Message is an inline notice shown above a page
type Message struct {
	Level string // success, info, warning, error
	Text  string
}

var pageTemplates = mustLoadPages()

func mustLoadPages() pages {
	p, err := loadPages()
	if err != nil {
		panic(err)
	}
	return p
}

// page renders the named embedded page inside the layout
func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pageTemplates[name]
		if !ok {
			return fmt.Errorf("unknown page %s", name)
		}
		return t.Execute(w, data)
	})
}

// Home is the tool selector
func Home(data layoutData) templ.Component {
	return page("home", data)
}

// Groups is the grouped locale table
func Groups(data groupsPage) templ.Component {
	return page("groups", data)
}

// Pages is the flat page table with multi-select grouping
func Pages(data pagesPage) templ.Component {
	return page("pages", data)
}

// GroupConfirm confirms or reports a page grouping
func GroupConfirm(data groupConfirmPage) templ.Component {
	return page("group", data)
}

// Notes is the post-sales notes tool
func Notes(data notesPage) templ.Component {
	return page("notes", data)
}

func render(c *fiber.Ctx, status int, component templ.Component) error {
	var opts []func(*templ.ComponentHandler)
	if status != http.StatusOK {
		opts = append(opts, templ.WithStatus(status))
	}
	return adaptor.HTTPHandler(templ.Handler(component, opts...))(c)
}
