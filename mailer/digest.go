// ABOUTME: This file renders the per-user screening digest email
package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"cienaga/schedule"
)

// DigestItem is one screening entry in a user's digest.
type DigestItem struct {
	FilmTitle  string
	CinemaName string
	URL        string
	Times      []time.Time
}

var digestTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"local": func(t time.Time) string {
		return t.In(schedule.BuenosAires).Format("02/01 15:04")
	},
}).Parse(`<html>
<body>
<p>Hola{{if .Name}} {{.Name}}{{end}},</p>
<p>Hay funciones nuevas de películas que te interesan:</p>
{{range .Items}}
<h3>{{.FilmTitle}}{{if .CinemaName}} — {{.CinemaName}}{{end}}</h3>
<p>
{{- range $i, $t := .Times}}{{if $i}}, {{end}}{{local $t}}{{end -}}
</p>
{{- if .URL}}
<p><a href="{{.URL}}">Más información</a></p>
{{- end}}
{{end}}
<p>— Ciénaga</p>
</body>
</html>
`))

type digestData struct {
	Name  string
	Items []DigestItem
}

// RenderDigest builds the subject line and HTML body for one user's digest.
func RenderDigest(recipientName string, items []DigestItem) (string, string, error) {
	if len(items) == 0 {
		return "", "", fmt.Errorf("empty digest")
	}

	subject := fmt.Sprintf("%d películas de tus directores en cartelera", len(items))
	if len(items) == 1 {
		subject = fmt.Sprintf("%s en cartelera", items[0].FilmTitle)
	}

	var body strings.Builder
	if err := digestTemplate.Execute(&body, digestData{Name: recipientName, Items: items}); err != nil {
		return "", "", fmt.Errorf("rendering digest: %w", err)
	}

	return subject, body.String(), nil
}
