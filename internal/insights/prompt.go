package insights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

const systemPrompt = "You are an assistant that analyzes personal spending habits and identifies trends or savings opportunities. " +
	"Respond with ONLY a JSON object of the form {\"summary\": \"...\"}."

var promptTemplate = template.Must(template.New("prompt").Parse(`Analyze the following transactions to identify spending patterns, trends, and potential areas for savings.

Transactions:
{{- range .Transactions}}
- Description: {{.Description}}, Amount: {{.Amount.String}}
{{- end}}

Provide a concise summary of your findings, highlighting key trends and actionable recommendations for saving money.
Consider things such as common themes, large expenses, or any unusual spending.
Be specific and provide practical advice.
`))

// BuildPrompt renders the user prompt for req.
func BuildPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

// parseSummary extracts the summary from model output. Output that is not the
// requested JSON object is used verbatim.
func parseSummary(content string) (Response, error) {
	content = cleanMarkdownWrapper(content)
	if content == "" {
		return Response{}, fmt.Errorf("empty model response")
	}

	var resp Response
	if err := json.Unmarshal([]byte(content), &resp); err == nil && strings.TrimSpace(resp.Summary) != "" {
		resp.Summary = strings.TrimSpace(resp.Summary)
		return resp, nil
	}
	return Response{Summary: content}, nil
}

// cleanMarkdownWrapper strips a ```json fence around the payload.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
