package dashboard

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/moviesearch/internal/search"
)

//go:embed index.html
var indexHTML string

//go:embed tips.md
var tipsMarkdown []byte

type pageData struct {
	MinResults     int
	MaxResults     int
	DefaultResults int
	Tips           template.HTML
}

func renderPage() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var tips bytes.Buffer
	if err := md.Convert(tipsMarkdown, &tips); err != nil {
		return nil, fmt.Errorf("rendering search tips: %w", err)
	}

	tmpl, err := template.New("index").Parse(indexHTML)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}

	var out bytes.Buffer
	err = tmpl.Execute(&out, pageData{
		MinResults:     search.MinResults,
		MaxResults:     search.MaxResults,
		DefaultResults: search.DefaultResults,
		// Rendered from the embedded tips file only.
		Tips: template.HTML(tips.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return out.Bytes(), nil
}

// ServeIndex serves the search page.
func (d *Dashboard) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(d.page)
}
