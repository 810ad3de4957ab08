package build

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	sberrors "git.home.luguber.info/inful/sitebuild/internal/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/site"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} - {{.SiteTitle}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
</head>
<body>
<header><h1 class="site-title">{{.SiteTitle}}</h1>
{{- if .Section}}<nav class="section">{{.Section}}</nav>{{- end}}
</header>
<main>
{{.Body}}
</main>
</body>
</html>
`

type pageData struct {
	Title       string
	SiteTitle   string
	Description string
	Section     string
	Body        template.HTML
}

// Renderer converts the file collection into the on-disk output tree.
// Markdown files become wrapped HTML pages; everything else is copied verbatim.
type Renderer struct {
	cfg       *config.Config
	outputDir string
	md        goldmark.Markdown
	tmpl      *template.Template
	titler    cases.Caser
}

func NewRenderer(cfg *config.Config, outputDir string) (*Renderer, error) {
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		cfg:       cfg,
		outputDir: outputDir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		tmpl:   tmpl,
		titler: cases.Title(language.English),
	}, nil
}

// RenderAll writes every file of the collection under the output directory.
// Returns the number of rendered pages and copied assets.
func (r *Renderer) RenderAll(ctx context.Context, collection *site.Collection) (rendered, copied int, err error) {
	for _, f := range collection.All() {
		select {
		case <-ctx.Done():
			return rendered, copied, ctx.Err()
		default:
		}

		outPath := filepath.Join(r.outputDir, filepath.FromSlash(f.OutputRelPath()))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return rendered, copied, sberrors.BuildFailed("create_output_dir", err)
		}

		if site.IsMarkdownFile(f.DestURI) {
			if err := r.renderPage(f, outPath); err != nil {
				return rendered, copied, err
			}
			rendered++
		} else {
			if err := copyFile(f.SrcPath, outPath); err != nil {
				return rendered, copied, sberrors.RenderError(f.DestURI, err)
			}
			copied++
		}
		slog.Debug("Wrote output file", logfields.Dest(f.DestURI), logfields.Path(outPath))
	}
	return rendered, copied, nil
}

func (r *Renderer) renderPage(f *site.File, outPath string) error {
	if err := f.LoadContent(); err != nil {
		return sberrors.RenderError(f.DestURI, err)
	}

	var body bytes.Buffer
	if err := r.md.Convert(f.Content, &body); err != nil {
		return sberrors.RenderError(f.DestURI, err)
	}

	title := extractTitle(body.Bytes())
	if title == "" {
		title = humanizeName(strings.TrimSuffix(filepath.Base(f.DestURI), filepath.Ext(f.DestURI)), r.titler)
	}

	data := pageData{
		Title:       title,
		SiteTitle:   r.cfg.Site.Title,
		Description: r.cfg.Site.Description,
		Section:     humanizeName(f.Section, r.titler),
		Body:        template.HTML(body.String()),
	}

	out, err := os.Create(outPath)
	if err != nil {
		return sberrors.RenderError(f.DestURI, err)
	}
	defer out.Close()
	if err := r.tmpl.Execute(out, data); err != nil {
		return sberrors.RenderError(f.DestURI, err)
	}
	return nil
}

// extractTitle returns the text of the first h1 element in the rendered body.
func extractTitle(body []byte) string {
	doc, err := xhtml.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var title string
	var walk func(*xhtml.Node) bool
	walk = func(n *xhtml.Node) bool {
		if n.Type == xhtml.ElementNode && n.Data == "h1" {
			title = strings.TrimSpace(textContent(n))
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

func textContent(n *xhtml.Node) string {
	if n.Type == xhtml.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

// humanizeName turns a path-ish name ("getting-started/api_notes") into a
// display label ("Getting Started / Api Notes").
func humanizeName(name string, titler cases.Caser) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "-", " ")
		part = strings.ReplaceAll(part, "_", " ")
		parts[i] = titler.String(part)
	}
	return strings.Join(parts, " / ")
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
