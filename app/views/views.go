package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"path"
)

//go:embed templates
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageIndex = "index"
	PageShow  = "show"
)

var pageFiles = map[string][]string{
	PageIndex: {"templates/layout.html", "templates/posts/index.html"},
	PageShow:  {"templates/layout.html", "templates/posts/show.html"},
}

type Options struct {
	// Markdown renders post content as markdown instead of escaped text.
	Markdown bool
}

// Renderer executes the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page once.
func New(opts Options) (*Renderer, error) {
	body := Plain
	if opts.Markdown {
		body = Markdown
	}
	funcs := template.FuncMap{
		"body": body,
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for name, files := range pageFiles {
		tmpl, err := template.New(path.Base(files[0])).Funcs(funcs).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s templates: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render executes page into a buffer first, so a template error never
// leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
