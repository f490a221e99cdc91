package agents

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

const Uncategorized = "uncategorized"

// Categories a post can be filed under.
var Categories = []string{
	"promotion", "announcement", "education", "behind_the_scenes",
	"event", "community", "product", "personal",
}

type Categorizer struct {
	client *anthropicClient
}

func NewCategorizer(apiKey string, opts ...ClientOption) (*Categorizer, error) {
	client, err := newAnthropicClient(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return &Categorizer{client: client}, nil
}

// SuggestCategory picks one of Categories for the message.
func (c *Categorizer) SuggestCategory(ctx context.Context, message string) (string, error) {
	prompt := fmt.Sprintf(`You are an assistant filing social media posts.

Choose ONE category for this post: %s

Post: "%s"

Respond in this exact format:
CATEGORY: [category]
REASON: [brief explanation why]`, strings.Join(Categories, ", "), message)

	responseText, err := c.client.complete(ctx, prompt, 200)
	if err != nil {
		return Uncategorized, err
	}

	return parseCategory(responseText), nil
}

func parseCategory(response string) string {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "CATEGORY:") {
			continue
		}
		category := strings.TrimSpace(line[len("CATEGORY:"):])
		category = strings.ToLower(strings.Trim(category, "[]*"))
		category = strings.ReplaceAll(category, " ", "_")
		if slices.Contains(Categories, category) {
			return category
		}
	}
	return Uncategorized
}
