// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"text/template"
)

// SystemPrompt instructs the model to answer with a single JSON object.
const SystemPrompt = `I am an assistant that processes text from a pdf scientific article and extracts key information.
I will identify the last author of the scientific article, the title of the scientific article, and the year of publication, and I will return them in JSON format. The name will be formatted as last_first (no commas). All text must be valid JSON and contain no non-alphanumeric characters.
Example:

{"last_author": "last_first", "title": "title", "year": year_of_publication}`

// userPromptTmpl wraps the page text. The literal None reply is what the
// extractor treats as "nothing on this page".
var userPromptTmpl = template.Must(template.New("user").Parse(
	"Please extract the year, title, and last contributing author (corresponding author) from this text: ```{{.Text}}```.\n" +
		"If you cannot extract the information return: None.\n"))

// UserPrompt renders the per-page prompt.
func UserPrompt(pageText string) (string, error) {
	var buf bytes.Buffer
	if err := userPromptTmpl.Execute(&buf, struct{ Text string }{Text: pageText}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
