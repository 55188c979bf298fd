package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Raw HTML in plan content is escaped; WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

var pageNames = []string{
	"index.html",
	"auth.html",
	"dashboard.html",
	"profile.html",
	"create_plan.html",
	"plan.html",
	"assessment.html",
	"results.html",
	"professionals.html",
	"not_found.html",
}

// renderMarkdown converts plan content to HTML, escaping it when goldmark
// fails.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
	"stars": func(n int) []bool {
		out := make([]bool, 5)
		for i := range out {
			out[i] = i < n
		}
		return out
	},
	"add":  func(a, b int) int { return a + b },
	"date": func(t time.Time) string { return t.Format("January 2, 2006") },
}

// parseTemplates builds one template set per page, each sharing the layout.
func parseTemplates() (map[string]*template.Template, error) {
	set := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		set[name] = tpl
	}
	return set, nil
}

// page is what every template receives.
type page struct {
	Title   string
	Session *session.Session
	Flash   *types.Notification
	CSRF    template.HTML
	// Refresh reloads the page after this many seconds when positive.
	Refresh int
	Data    any
}

func (p *Pages) render(c *gin.Context, status int, name, title string, data any) {
	p.renderPage(c, status, name, &page{Title: title, Data: data})
}

func (p *Pages) renderPage(c *gin.Context, status int, name string, pg *page) {
	tpl, ok := p.templates[name]
	if !ok {
		p.log.Error("unknown template", zap.String("template", name))
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	pg.Session, _ = middleware.CurrentSession(c)
	if flash := p.flashes.take(c); flash != nil {
		pg.Flash = flash
	}
	pg.CSRF = middleware.CSRFTemplateField(c)

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, pg); err != nil {
		p.log.Error("failed to render page", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// redirect answers a form post with 303 See Other and an optional flash.
func (p *Pages) redirect(c *gin.Context, to string, n *types.Notification) {
	p.flashes.set(c, n)
	c.Redirect(http.StatusSeeOther, to)
}
