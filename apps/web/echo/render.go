package echoweb

import (
	"html/template"
	"io"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/syllabus/core/account"
	"github.com/trezcool/syllabus/core/catalog"
	"github.com/trezcool/syllabus/core/view"
	"github.com/trezcool/syllabus/fs"
)

const webTemplatesDir = "assets/templates/web"

type (
	templateRenderer struct {
		templates *template.Template
	}

	navItem struct {
		Name   string
		Title  string
		Active bool
	}

	pageData struct {
		AppName string
		Title   string
		Account *account.Account
		Nav     []navItem
		Model   *view.Model
		Error   string
		Login   string
	}
)

var _ echo.Renderer = (*templateRenderer)(nil) // interface compliance check

func newRenderer() (*templateRenderer, error) {
	tmpl, err := template.New("web").
		Funcs(template.FuncMap{"inc": func(n int) int { return n + 1 }}).
		ParseFS(appfs.FS, path.Join(webTemplatesDir, "*.gohtml"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing web templates")
	}
	return &templateRenderer{templates: tmpl}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

func newNav(reg *catalog.Registry, active string) []navItem {
	resources := reg.All()
	nav := make([]navItem, 0, len(resources))
	for _, res := range resources {
		nav = append(nav, navItem{Name: res.Name, Title: res.Title, Active: res.Name == active})
	}
	return nav
}
