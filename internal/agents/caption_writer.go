package agents

import (
	"context"
	"fmt"
	"strings"
)

const maxVariations = 3

type CaptionWriter struct {
	client *anthropicClient
}

func NewCaptionWriter(apiKey string, opts ...ClientOption) (*CaptionWriter, error) {
	client, err := newAnthropicClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &CaptionWriter{client: client}, nil
}

// GenerateCaptions drafts up to three caption variations for a topic.
func (w *CaptionWriter) GenerateCaptions(ctx context.Context, topic, category string) ([]string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("no topic provided")
	}

	if category == "" {
		category = "general"
	}

	prompt := fmt.Sprintf(`You are a social media copywriter drafting short posts.

Topic: %s
Category: %s

Write 3 different captions that:
1. Are between 50 and 200 characters
2. Include one or two relevant hashtags
3. Contain a clear call to action (click, visit, learn, try, join, follow...)
4. End with a question to invite replies

Format your response as:
===VARIATION 1===
[caption]

===VARIATION 2===
[caption]

===VARIATION 3===
[caption]`, topic, category)

	responseText, err := w.client.complete(ctx, prompt, 1000)
	if err != nil {
		return nil, err
	}

	variations := parseVariations(responseText)
	if len(variations) == 0 {
		return nil, fmt.Errorf("failed to generate variations")
	}

	return variations, nil
}

// ImproveCaption rewrites a caption so it addresses the scorer's feedback.
func (w *CaptionWriter) ImproveCaption(ctx context.Context, message string, feedback []string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("no caption provided")
	}

	tips := "none"
	if len(feedback) > 0 {
		tips = "- " + strings.Join(feedback, "\n- ")
	}

	prompt := fmt.Sprintf(`Rewrite this social media caption so it performs better.

Caption:
"%s"

Reviewer notes:
%s

Keep the original meaning. Reply with the rewritten caption only, no preamble.`, message, tips)

	responseText, err := w.client.complete(ctx, prompt, 500)
	if err != nil {
		return "", err
	}

	improved := strings.Trim(strings.TrimSpace(responseText), `"`)
	if improved == "" {
		return "", fmt.Errorf("empty rewrite")
	}

	return improved, nil
}

func parseVariations(response string) []string {
	var variations []string

	parts := strings.Split(response, "===VARIATION")

	// parts[0] is whatever preceded the first marker.
	for _, part := range parts[1:] {
		lines := strings.Split(part, "\n")
		if len(lines) < 2 {
			continue
		}

		content := strings.TrimSpace(strings.Join(lines[1:], "\n"))
		if content != "" {
			variations = append(variations, content)
		}
		if len(variations) == maxVariations {
			break
		}
	}

	return variations
}
