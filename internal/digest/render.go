package digest

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"
)

//go:embed digest_email.tmpl
var digestTpl string

var compiled = template.Must(template.New("digest").Funcs(template.FuncMap{
	"formatDuration": FormatDuration,
	"longDate": func(t time.Time) string {
		return t.UTC().Format("Monday, January 2, 2006")
	},
	"shortDate": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006")
	},
}).Parse(digestTpl))

// RenderHTML renders the assembled digest into the email body.
func RenderHTML(d Digest) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
