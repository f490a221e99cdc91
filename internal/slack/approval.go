package slack

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shubh-37/post-scheduler/internal/models"
)

// Reaction names Slack sends for the approval emoji.
var keepOneReactions = map[string]int{
	"one":   0,
	"two":   1,
	"three": 2,
}

type ApprovalHandler struct {
	client   Messenger
	postRepo PostRepository

	mu         sync.Mutex
	draftCache map[string][]string // messageTS -> []postIDs
}

func NewApprovalHandler(client Messenger, postRepo PostRepository) *ApprovalHandler {
	return &ApprovalHandler{
		client:     client,
		postRepo:   postRepo,
		draftCache: make(map[string][]string),
	}
}

// StoreDraftMessage stores the mapping between Slack message and post IDs
func (h *ApprovalHandler) StoreDraftMessage(messageTS string, postIDs []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draftCache[messageTS] = postIDs
	slog.Debug("📌 Stored draft message mapping", "ts", messageTS, "post_ids", postIDs)
}

func (h *ApprovalHandler) takeDrafts(messageTS string) ([]string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	postIDs, ok := h.draftCache[messageTS]
	if ok {
		delete(h.draftCache, messageTS)
	}
	return postIDs, ok
}

// HandleReaction processes a reaction added to a generated-drafts message.
// Each drafts message is resolved once; later reactions on it are ignored.
func (h *ApprovalHandler) HandleReaction(ctx context.Context, channelID, messageTS, reaction string) error {
	slog.Debug("👍 Reaction added", "reaction", reaction, "ts", messageTS)

	switch reaction {
	case "white_check_mark", "heavy_check_mark", "x":
	default:
		if _, ok := keepOneReactions[reaction]; !ok {
			return nil
		}
	}

	postIDs, exists := h.takeDrafts(messageTS)
	if !exists {
		return nil
	}

	switch reaction {
	case "white_check_mark", "heavy_check_mark":
		return h.keepAll(ctx, channelID, postIDs)
	case "x":
		return h.discardAll(ctx, channelID, postIDs)
	default:
		return h.keepOne(ctx, channelID, messageTS, postIDs, keepOneReactions[reaction])
	}
}

func (h *ApprovalHandler) keepOne(ctx context.Context, channelID, messageTS string, postIDs []string, index int) error {
	if index >= len(postIDs) {
		h.StoreDraftMessage(messageTS, postIDs)
		return h.client.SendMessage(channelID, "❌ Invalid variation number")
	}

	post, err := h.promote(ctx, postIDs[index])
	if err != nil {
		h.StoreDraftMessage(messageTS, postIDs)
		return h.client.SendMessage(channelID, "❌ Failed to keep that variation, react again to retry")
	}

	for i, otherID := range postIDs {
		if i == index {
			continue
		}
		if err := h.postRepo.Delete(ctx, otherID); err != nil {
			slog.Warn("⚠️ Failed to discard draft", "post_id", otherID, "error", err)
		}
	}

	message := fmt.Sprintf("✅ Kept variation %d as *%s* `%s` (score %d)", index+1, post.Status, post.ID, post.Score)
	return h.client.SendMessage(channelID, message)
}

func (h *ApprovalHandler) keepAll(ctx context.Context, channelID string, postIDs []string) error {
	var kept int
	for _, postID := range postIDs {
		if _, err := h.promote(ctx, postID); err != nil {
			continue
		}
		kept++
	}

	return h.client.SendMessage(channelID, fmt.Sprintf("✅ Kept %d draft(s). Use `schedule` to plan them.", kept))
}

func (h *ApprovalHandler) discardAll(ctx context.Context, channelID string, postIDs []string) error {
	var discarded int
	for _, postID := range postIDs {
		if err := h.postRepo.Delete(ctx, postID); err != nil {
			slog.Warn("⚠️ Failed to discard draft", "post_id", postID, "error", err)
			continue
		}
		discarded++
	}

	return h.client.SendMessage(channelID, fmt.Sprintf("❌ Discarded %d draft(s). Generate new ones with `generate your topic`", discarded))
}

// promote turns a draft into a queued or scheduled post. Drafts are scored
// when stored and the score does not depend on status, so only the status is written.
func (h *ApprovalHandler) promote(ctx context.Context, postID string) (*models.Post, error) {
	post, err := h.postRepo.GetByID(ctx, postID)
	if err != nil {
		slog.Warn("⚠️ Failed to get draft", "post_id", postID, "error", err)
		return nil, err
	}

	status := models.StatusQueued
	if post.IsScheduled() {
		status = models.StatusScheduled
	}

	if err := h.postRepo.UpdateStatus(ctx, postID, status); err != nil {
		slog.Warn("⚠️ Failed to update draft", "post_id", postID, "error", err)
		return nil, err
	}
	post.Status = status
	return post, nil
}
