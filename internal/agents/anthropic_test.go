package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, reply string) (*httptest.Server, *anthropicRequest) {
	t.Helper()
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"type":"overloaded_error","message":"busy"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContent{{Type: "text", Text: reply}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	_, err := NewCaptionWriter("")
	require.ErrorIs(t, err, ErrMissingAPIKey)
	_, err = NewCategorizer("")
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateCaptions(t *testing.T) {
	reply := "Sure!\n===VARIATION 1===\nFirst caption #one\n\n===VARIATION 2===\nSecond caption?\n\n===VARIATION 3===\nThird"
	srv, got := newTestServer(t, http.StatusOK, reply)

	w, err := NewCaptionWriter("test-key", WithBaseURL(srv.URL), WithModel("test-model"))
	require.NoError(t, err)

	captions, err := w.GenerateCaptions(context.Background(), "spring sale", "promotion")
	require.NoError(t, err)
	assert.Equal(t, []string{"First caption #one", "Second caption?", "Third"}, captions)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "spring sale")
}

func TestGenerateCaptionsEmptyTopic(t *testing.T) {
	w, err := NewCaptionWriter("test-key")
	require.NoError(t, err)
	_, err = w.GenerateCaptions(context.Background(), "  ", "")
	require.Error(t, err)
}

func TestImproveCaption(t *testing.T) {
	srv, got := newTestServer(t, http.StatusOK, "  \"Join us Friday! Who's coming? #party\"  ")
	w, err := NewCaptionWriter("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	improved, err := w.ImproveCaption(context.Background(), "party friday", []string{"add hashtags", "add a question"})
	require.NoError(t, err)
	assert.Equal(t, "Join us Friday! Who's coming? #party", improved)
	assert.Contains(t, got.Messages[0].Content, "- add hashtags\n- add a question")
}

func TestCompleteAPIError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusServiceUnavailable, "")
	w, err := NewCaptionWriter("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = w.GenerateCaptions(context.Background(), "topic", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSuggestCategory(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, "CATEGORY: Behind The Scenes\nREASON: shows the team")
	c, err := NewCategorizer("test-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	category, err := c.SuggestCategory(context.Background(), "Our bakers start at 4am")
	require.NoError(t, err)
	assert.Equal(t, "behind_the_scenes", category)
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, "event", parseCategory("CATEGORY: [event]"))
	assert.Equal(t, "product", parseCategory("category: **Product**"))
	assert.Equal(t, Uncategorized, parseCategory("CATEGORY: gardening"))
	assert.Equal(t, Uncategorized, parseCategory("no idea"))
}

func TestParseVariationsCapsAtThree(t *testing.T) {
	resp := "===VARIATION 1===\na\n===VARIATION 2===\nb\n===VARIATION 3===\nc\n===VARIATION 4===\nd"
	assert.Equal(t, []string{"a", "b", "c"}, parseVariations(resp))
	assert.Empty(t, parseVariations("nothing here"))
}
