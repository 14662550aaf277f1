// ABOUTME: Plain-text and HTML bodies for alert emails
// ABOUTME: One template pair per alert type plus a digest for a batch of alerts
package notify

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/harper/pricewatch/internal/models"
)

type emailData struct {
	Heading  string
	ItemName string
	Message  string
	URL      string
	Price    string
	Target   string
	ImageURL string
}

const textBody = `{{.Heading}}

{{.Message}}

Item: {{.ItemName}}
{{- if .Price}}
Current price: {{.Price}}{{end}}
{{- if .Target}}
Target price: {{.Target}}{{end}}
Link: {{.URL}}
`

const htmlBody = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
    <h2 style="color: #333;">{{.Heading}}</h2>
    {{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.ItemName}}" style="max-width: 200px;">{{end}}
    <h3>{{.ItemName}}</h3>
    <p>{{.Message}}</p>
    {{if .Price}}<p><strong>Current price:</strong> {{.Price}}</p>{{end}}
    {{if .Target}}<p><strong>Target price:</strong> {{.Target}}</p>{{end}}
    <p><a href="{{.URL}}" style="color: #2563eb;">View product</a></p>
  </div>
</body>
</html>`

const digestTextBody = `Your price tracker alerts

{{range .}}* {{.Heading}}: {{.ItemName}}
  {{.Message}}
  {{.URL}}
{{end}}`

const digestHTMLBody = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
    <h2 style="color: #333;">Your price tracker alerts</h2>
    {{range .}}
    <div style="border: 1px solid #ddd; padding: 15px; margin: 10px 0; border-radius: 5px; background-color: {{if .Similar}}#e3f2fd{{else}}#e8f5e9{{end}};">
      <div style="font-size: 18px; font-weight: bold;">{{.ItemName}}</div>
      <p>{{.Message}}</p>
      <a href="{{.URL}}" style="color: #1976d2;">View item</a>
    </div>
    {{end}}
  </div>
</body>
</html>`

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textBody))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlBody))

	digestTextTmpl = texttemplate.Must(texttemplate.New("digest-text").Parse(digestTextBody))
	digestHTMLTmpl = htmltemplate.Must(htmltemplate.New("digest-html").Parse(digestHTMLBody))
)

type digestEntry struct {
	Heading  string
	ItemName string
	Message  string
	URL      string
	Similar  bool
}

func headingFor(t models.AlertType) string {
	switch t {
	case models.AlertSimilarItem:
		return "Better alternative found"
	default:
		return "Price drop"
	}
}

// renderBodies returns the plain-text and HTML bodies for an alert
func renderBodies(alert *models.Alert, item *models.Item) (string, string, error) {
	data := emailData{
		Heading:  headingFor(alert.Type),
		ItemName: item.DisplayName(),
		Message:  alert.Message,
		URL:      item.URL,
		ImageURL: item.ImageURL,
	}
	if alert.Price != nil {
		data.Price = FormatPrice(*alert.Price)
	} else if item.CurrentPrice != nil {
		data.Price = FormatPrice(*item.CurrentPrice)
	}
	if item.TargetPrice != nil && alert.Type == models.AlertPriceDrop {
		data.Target = FormatPrice(*item.TargetPrice)
	}

	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return "", "", err
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(text.String()) + "\n", html.String(), nil
}

// renderDigest returns the plain-text and HTML bodies for a batch of alerts
func renderDigest(deliveries []Delivery) (string, string, error) {
	entries := make([]digestEntry, 0, len(deliveries))
	for _, d := range deliveries {
		entries = append(entries, digestEntry{
			Heading:  headingFor(d.Alert.Type),
			ItemName: d.Item.DisplayName(),
			Message:  d.Alert.Message,
			URL:      d.Item.URL,
			Similar:  d.Alert.Type == models.AlertSimilarItem,
		})
	}

	var text, html bytes.Buffer
	if err := digestTextTmpl.Execute(&text, entries); err != nil {
		return "", "", err
	}
	if err := digestHTMLTmpl.Execute(&html, entries); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(text.String()) + "\n", html.String(), nil
}
