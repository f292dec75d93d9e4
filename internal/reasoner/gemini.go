package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the default Gemini model used for analysis tasks.
const DefaultModelName = "gemini-2.5-flash"

// Gemini is the production Reasoner backed by the Gemini API. The payload's
// "instructions" entry carries the task prompt; the remaining entries are
// serialized as the structured input the model analyzes.
type Gemini struct {
	Model string
}

// NewGemini creates a Gemini reasoner. An empty model selects
// DefaultModelName. Credentials come from the environment, same as the rest
// of the genai client surface.
func NewGemini(model string) *Gemini {
	if model == "" {
		model = DefaultModelName
	}
	return &Gemini{Model: model}
}

// Invoke sends the task payload to Gemini and parses the response as a
// strict JSON object.
func (g *Gemini) Invoke(ctx context.Context, taskName string, payload map[string]any) (map[string]any, error) {
	prompt, err := buildPrompt(taskName, payload)
	if err != nil {
		return nil, fmt.Errorf("Invoke(%s): build prompt: %w", taskName, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("Invoke(%s): create genai client: %w", taskName, err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, g.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("Invoke(%s): generate content: %w", taskName, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Invoke(%s): empty response from model", taskName)
	}

	// Clean up Markdown fences / extra text if the model ignored instructions.
	clean := cleanModelJSON(rawText)

	var result map[string]any
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("Invoke(%s): unmarshal JSON: %w\nraw response: %s", taskName, err, rawText)
	}

	return result, nil
}

func buildPrompt(taskName string, payload map[string]any) (string, error) {
	instructions, _ := payload["instructions"].(string)
	if instructions == "" {
		return "", fmt.Errorf("payload has no instructions")
	}

	input := make(map[string]any, len(payload))
	for k, v := range payload {
		if k == "instructions" {
			continue
		}
		input[k] = v
	}

	inputJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal input: %w", err)
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nINPUT DATA (JSON):\n")
	b.Write(inputJSON)
	b.WriteString("\n\nReturn ONLY valid raw JSON.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must be a single JSON object beginning with \"{\" and ending with \"}\".\n")

	return b.String(), nil
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
