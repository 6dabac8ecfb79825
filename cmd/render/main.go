// Command render renders a CV JSON file without the server.
//
//	render -in cv.json -fmt pdf -out cv.pdf
//	render -in cv.json -selection short.json -fmt md
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"cv-generator/internal/domain"
	"cv-generator/internal/render"
	"cv-generator/internal/usecase"
	infra "cv-generator/pkg/infrastructure"

	"go.uber.org/zap"
)

func main() {
	in := flag.String("in", "cv.json", "CV JSON file")
	selPath := flag.String("selection", "", "optional selection JSON file")
	format := flag.String("fmt", "md", "output format: md, txt, html or pdf")
	out := flag.String("out", "", "output file (default stdout)")
	lang := flag.String("lang", "es", "heading language (es or en)")
	verbatim := flag.Bool("verbatim", false, "emit sanitized markup from free-text fields in html/pdf")
	tplDir := flag.String("templates", "", "directory overriding the embedded templates")
	chrome := flag.String("chrome", os.Getenv("CHROME_PATH"), "chrome executable for pdf output")
	flag.Parse()

	if err := run(*in, *selPath, *format, *out, *lang, *verbatim, *tplDir, *chrome); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(2)
	}
}

func run(in, selPath, format, out, lang string, verbatim bool, tplDir, chrome string) error {
	b, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read cv: %w", err)
	}
	doc, err := usecase.ParseImport(b)
	if err != nil {
		return err
	}

	var sel *domain.Selection
	if selPath != "" {
		sb, err := os.ReadFile(selPath)
		if err != nil {
			return fmt.Errorf("read selection: %w", err)
		}
		var s domain.Selection
		if err := json.Unmarshal(sb, &s); err != nil {
			return fmt.Errorf("%w: selection: %v", domain.ErrMalformedJSON, err)
		}
		sel = &s
	}

	r, err := render.New(render.Options{Language: lang, Verbatim: verbatim, TemplatesDir: tplDir})
	if err != nil {
		return err
	}
	log := zap.NewNop()
	gen := usecase.NewGenerator(r, infra.NewChromedpRenderer(chrome, 60*time.Second),
		usecase.GeneratorOptions{Attempts: 3, Backoff: time.Second}, log)
	doc = gen.Prepare(doc, sel)

	var result []byte
	switch format {
	case "md", "txt":
		s, err := gen.RenderText(doc, format)
		if err != nil {
			return err
		}
		result = []byte(s)
	case "html":
		s, err := r.RenderHTML(doc)
		if err != nil {
			return err
		}
		result = []byte(s)
	case "pdf":
		if out == "" {
			return fmt.Errorf("pdf output needs -out")
		}
		if result, err = gen.RenderPDF(context.Background(), doc); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if out == "" {
		_, err = os.Stdout.Write(result)
		return err
	}
	if err := os.WriteFile(out, result, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}
