// Package render turns a CV document into markdown, plain text or print HTML.
//
// Text formats go through text/template and are never escaped. The print
// HTML goes through html/template; free-text fields are escaped unless the
// renderer is built with Verbatim, in which case they are passed through a
// bluemonday UGC policy and emitted as markup.
package render

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"

	"cv-generator/internal/domain"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*
var embedded embed.FS

const (
	markdownTemplate = "cv.md.tmpl"
	textTemplate     = "cv.txt.tmpl"
	htmlTemplate     = "cv_pdf.html.tmpl"
	styleSheet       = "style.css"
)

type Options struct {
	// Language selects heading labels ("es" or "en").
	Language string
	// Verbatim lets sanitized markup through in the print HTML.
	Verbatim bool
	// TemplatesDir overrides embedded templates file by file.
	TemplatesDir string
}

type Renderer struct {
	markdown *texttemplate.Template
	text     *texttemplate.Template
	html     *htmltemplate.Template
	css      string
}

func New(opts Options) (*Renderer, error) {
	labels := Labels(opts.Language)
	label := func(key string) string {
		if v, ok := labels[key]; ok {
			return v
		}
		return key
	}

	textFuncs := texttemplate.FuncMap{
		"join":      strings.Join,
		"label":     label,
		"linkLabel": LinkLabel,
		"line":      joinLine,
		"dates":     dateRange,
		"upper":     strings.ToUpper,
	}

	policy := bluemonday.UGCPolicy()
	rich := func(s string) any {
		if opts.Verbatim {
			return htmltemplate.HTML(policy.Sanitize(s))
		}
		return s
	}
	htmlFuncs := htmltemplate.FuncMap{
		"join":      strings.Join,
		"label":     label,
		"linkLabel": LinkLabel,
		"line":      joinLine,
		"dates":     dateRange,
		"rich":      rich,
	}

	r := &Renderer{}
	var err error
	if r.markdown, err = parseText(opts.TemplatesDir, markdownTemplate, textFuncs); err != nil {
		return nil, err
	}
	if r.text, err = parseText(opts.TemplatesDir, textTemplate, textFuncs); err != nil {
		return nil, err
	}
	src, err := readTemplate(opts.TemplatesDir, htmlTemplate)
	if err != nil {
		return nil, err
	}
	if r.html, err = htmltemplate.New(htmlTemplate).Funcs(htmlFuncs).Parse(src); err != nil {
		return nil, fmt.Errorf("parse %s: %w", htmlTemplate, err)
	}
	if r.css, err = readTemplate(opts.TemplatesDir, styleSheet); err != nil {
		return nil, err
	}
	return r, nil
}

// RenderText renders markdown for format "md" and plain text otherwise.
func (r *Renderer) RenderText(doc *domain.Document, format string) (string, error) {
	tpl := r.text
	if format == "md" {
		tpl = r.markdown
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render %s: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}

// RenderHTML renders the print HTML with the stylesheet inlined into <head>.
func (r *Renderer) RenderHTML(doc *domain.Document) (string, error) {
	var buf bytes.Buffer
	if err := r.html.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render %s: %w", htmlTemplate, err)
	}
	return inlineCSS(buf.String(), r.css), nil
}

func inlineCSS(html, css string) string {
	if css == "" {
		return html
	}
	block := "<style>" + css + "</style>"
	if idx := strings.Index(strings.ToLower(html), "<head>"); idx >= 0 {
		at := idx + len("<head>")
		return html[:at] + block + html[at:]
	}
	return block + html
}

func parseText(dir, name string, funcs texttemplate.FuncMap) (*texttemplate.Template, error) {
	src, err := readTemplate(dir, name)
	if err != nil {
		return nil, err
	}
	tpl, err := texttemplate.New(name).Funcs(funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return tpl, nil
}

func readTemplate(dir, name string) (string, error) {
	if dir != "" {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(b), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	b, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("read embedded template %s: %w", name, err)
	}
	return string(b), nil
}
