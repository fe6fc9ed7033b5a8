// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ReferencesSplit is the literal the PDF layout splits a report on.
const ReferencesSplit = " References:"

var (
	bodyMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	refsMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
)

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
@page {
  size: A4;
  margin: 2cm;
  @bottom-center { content: "Page " counter(page); font-size: 10px; color: #666; }
}
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
h1 { color: #2c3e50; border-bottom: 3px solid #3498db; padding-bottom: 10px; margin-bottom: 30px; font-size: 24px; }
h2 { color: #34495e; border-bottom: 2px solid #ecf0f1; padding-bottom: 8px; margin-top: 30px; margin-bottom: 20px; font-size: 18px; }
h3 { color: #2c3e50; margin-top: 25px; margin-bottom: 15px; font-size: 16px; }
p { text-align: justify; margin-bottom: 15px; font-size: 12px; }
ul, ol { margin: 15px 0; padding-left: 25px; }
li { margin-bottom: 5px; font-size: 12px; }
strong { color: #2c3e50; font-weight: bold; }
a { color: #3498db; text-decoration: none; }
blockquote { border-left: 4px solid #3498db; margin: 20px 0; padding: 10px 20px; background-color: #f8f9fa; font-style: italic; }
code { background-color: #f8f9fa; padding: 2px 4px; border-radius: 3px; font-family: "Courier New", monospace; font-size: 10px; }
table { border-collapse: collapse; width: 100%; margin: 20px 0; }
th, td { border: 1px solid #ddd; padding: 8px; text-align: left; font-size: 11px; }
th { background-color: #f2f2f2; font-weight: bold; }
.header { text-align: center; margin-bottom: 40px; border-bottom: 1px solid #bdc3c7; padding-bottom: 20px; }
.date { color: #7f8c8d; font-size: 10px; text-align: right; margin-bottom: 30px; }
.references p { text-align: left; font-size: 11px; }
.footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #ecf0f1; text-align: center; color: #7f8c8d; font-size: 10px; }
</style>
</head>
<body>
<div class="header">
<h1>{{.Title}}</h1>
<div class="date">Generated on {{.Generated}}</div>
</div>
{{.Body}}
{{- if .References}}
<div class="references">
<h2>References</h2>
{{.References}}
</div>
{{- end}}
<div class="footer">
<p>Report generated automatically by the research-report pipeline</p>
</div>
</body>
</html>
`))

type document struct {
	Title      string
	Generated  string
	Body       template.HTML
	References template.HTML
}

// SplitReferences separates the report body from its references on the
// first " References:" literal. Both parts are trimmed.
func SplitReferences(report string) (body, refs string) {
	body, refs, _ = strings.Cut(report, ReferencesSplit)
	return strings.TrimSpace(body), strings.TrimSpace(refs)
}

// BuildHTML renders a report as a styled, print-ready HTML document.
func BuildHTML(report string, generated time.Time) (string, error) {
	body, refs := SplitReferences(report)

	bodyHTML, err := toHTML(bodyMarkdown, body)
	if err != nil {
		return "", fmt.Errorf("converting report body: %w", err)
	}
	var refsHTML string
	if refs != "" {
		if refsHTML, err = toHTML(refsMarkdown, refs); err != nil {
			return "", fmt.Errorf("converting references: %w", err)
		}
	}

	var buf bytes.Buffer
	err = documentTmpl.Execute(&buf, document{
		Title:      "Research Report",
		Generated:  generated.Format("January 2, 2006 at 15:04:05"),
		Body:       template.HTML(bodyHTML),
		References: template.HTML(refsHTML),
	})
	if err != nil {
		return "", fmt.Errorf("executing document template: %w", err)
	}
	return buf.String(), nil
}

func toHTML(md goldmark.Markdown, source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
