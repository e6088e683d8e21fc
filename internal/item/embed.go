package item

import (
	"fmt"
	"strings"
	"text/template"
)

// DefaultEmbedTemplate renders the tag pasted into a blog post to show a card.
const DefaultEmbedTemplate = `<div class="blog-part" data-src="{{.URL}}"></div>`

// EmbedData is passed to the embed template.
type EmbedData struct {
	BaseURL string
	File    string
	URL     string
}

// ParseEmbedTemplate compiles an embed tag template. An empty string
// selects DefaultEmbedTemplate.
func ParseEmbedTemplate(text string) (*template.Template, error) {
	if text == "" {
		text = DefaultEmbedTemplate
	}
	tmpl, err := template.New("embed").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("item: parse embed template: %w", err)
	}
	return tmpl, nil
}

// EmbedTag renders tmpl for file under baseURL. A file name without the
// .json extension gets one.
func EmbedTag(tmpl *template.Template, baseURL, file string) (string, error) {
	if !strings.HasSuffix(file, ".json") {
		file += ".json"
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, EmbedData{BaseURL: baseURL, File: file, URL: baseURL + file}); err != nil {
		return "", fmt.Errorf("item: render embed tag: %w", err)
	}
	return b.String(), nil
}
