package slack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shubh-37/post-scheduler/internal/agents"
	"github.com/shubh-37/post-scheduler/internal/database"
	"github.com/shubh-37/post-scheduler/internal/models"
	"github.com/shubh-37/post-scheduler/internal/scoring"
	"github.com/shubh-37/post-scheduler/internal/sentiment"
)

const maxListed = 10

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, opts database.ListOptions) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type CaptionGenerator interface {
	GenerateCaptions(ctx context.Context, topic, category string) ([]string, error)
	ImproveCaption(ctx context.Context, message string, feedback []string) (string, error)
}

type CategorySuggester interface {
	SuggestCategory(ctx context.Context, message string) (string, error)
}

type CommandHandler struct {
	client      Messenger
	postRepo    PostRepository
	writer      CaptionGenerator
	categorizer CategorySuggester
	scheduler   *agents.Scheduler
	location    *time.Location
	timezone    string
}

func NewCommandHandler(
	client Messenger,
	postRepo PostRepository,
	writer CaptionGenerator,
	categorizer CategorySuggester,
	scheduler *agents.Scheduler,
	timezone string,
) *CommandHandler {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		location = time.UTC
	}
	return &CommandHandler{
		client:      client,
		postRepo:    postRepo,
		writer:      writer,
		categorizer: categorizer,
		scheduler:   scheduler,
		location:    location,
		timezone:    timezone,
	}
}

// HandleScore scores a caption without storing it
func (h *CommandHandler) HandleScore(ctx context.Context, channelID, args string) error {
	in, err := parsePostInput(args, h.location)
	if err != nil {
		return h.client.SendMessage(channelID, "❌ "+err.Error())
	}

	post := in.toPost()
	tone := sentiment.Analyze(post.Message)

	return h.client.SendMessage(channelID, formatScoreReport(scoring.Result{Score: post.Score, Feedback: post.Feedback}, tone))
}

// HandleAdd stores a new post, scheduled if a date was given
func (h *CommandHandler) HandleAdd(ctx context.Context, channelID, args string) error {
	in, err := parsePostInput(args, h.location)
	if err != nil {
		return h.client.SendMessage(channelID, "❌ "+err.Error())
	}
	if strings.TrimSpace(in.Message) == "" {
		return h.client.SendMessage(channelID, "Please provide the post text: `add [category:name] [+image] [+video] [date:YYYY-MM-DD] your caption`")
	}

	if in.Category == "" && h.categorizer != nil {
		category, err := h.categorizer.SuggestCategory(ctx, in.Message)
		if err != nil {
			slog.Warn("⚠️ Category suggestion failed", "error", err)
		}
		if category != agents.Uncategorized {
			in.Category = category
		}
	}

	post := in.toPost()
	if err := h.postRepo.Create(ctx, post); err != nil {
		slog.Error("❌ Failed to save post", "error", err)
		return h.client.SendMessage(channelID, "❌ Failed to save post. Please try again.")
	}

	slog.Info("📝 Post saved", "post_id", post.ID, "status", post.Status, "score", post.Score)

	message := fmt.Sprintf("✅ Saved as *%s* `%s`\n\n", post.Status, post.ID)
	message += formatScoreReport(scoring.Result{Score: post.Score, Feedback: post.Feedback}, sentiment.Analyze(post.Message))
	return h.client.SendMessage(channelID, message)
}

// HandleGenerateDraft asks the caption writer for variations and stores them as drafts
func (h *CommandHandler) HandleGenerateDraft(ctx context.Context, channelID, args string) (string, []string, error) {
	in, err := parsePostInput(args, h.location)
	if err != nil {
		return "", nil, err
	}
	topic := strings.TrimSpace(in.Message)
	if topic == "" {
		return "", nil, fmt.Errorf("please provide a topic: `generate [category:name] your topic`")
	}

	slog.Info("📝 Generating drafts", "topic", topic, "category", in.Category)

	if err := h.client.SendMessage(channelID, "✨ Generating caption drafts... This may take a moment."); err != nil {
		slog.Warn("⚠️ Failed to send progress message", "error", err)
	}

	variations, err := h.writer.GenerateCaptions(ctx, topic, in.Category)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate drafts: %w", err)
	}

	var postIDs []string
	message := "🎯 *Generated Drafts*\n\n"
	for i, variation := range variations {
		draft := postInput{Message: variation, Category: in.Category, HasImage: in.HasImage, HasVideo: in.HasVideo, Date: in.Date}.toPost()
		draft.Status = models.StatusDraft

		if err := h.postRepo.Create(ctx, draft); err != nil {
			slog.Warn("⚠️ Failed to save draft", "index", i+1, "error", err)
			continue
		}
		postIDs = append(postIDs, draft.ID)

		message += "━━━━━━━━━━━━━━━━━━\n"
		message += fmt.Sprintf("*Variation %d* · score %d (%s)\n\n", len(postIDs), draft.Score, scoring.Grade(draft.Score))
		message += variation + "\n\n"
	}

	if len(postIDs) == 0 {
		return "", nil, fmt.Errorf("failed to save any drafts")
	}

	message += "━━━━━━━━━━━━━━━━━━\n\n"
	message += "💡 *React to keep:*\n"
	message += "• 1️⃣ 2️⃣ 3️⃣ to keep one variation\n"
	message += "• ✅ to keep all\n"
	message += "• ❌ to discard all"

	return message, postIDs, nil
}

// HandleImprove rewrites a stored post using its feedback and rescores it
func (h *CommandHandler) HandleImprove(ctx context.Context, channelID, postID string) error {
	post, err := h.postRepo.GetByID(ctx, postID)
	if err != nil {
		return h.replyLookupError(channelID, postID, err)
	}

	before := post.Score
	improved, err := h.writer.ImproveCaption(ctx, post.Message, post.Feedback)
	if err != nil {
		slog.Error("❌ Failed to improve caption", "post_id", postID, "error", err)
		return h.client.SendMessage(channelID, "❌ Failed to improve caption. Please try again.")
	}

	post.Message = improved
	res := post.Rescore()
	if err := h.postRepo.Update(ctx, post); err != nil {
		slog.Error("❌ Failed to save improved caption", "post_id", postID, "error", err)
		return h.client.SendMessage(channelID, "❌ Failed to save improved caption.")
	}

	message := fmt.Sprintf("✍️ *Improved caption* (score %d → %d)\n\n%s\n\n", before, post.Score, improved)
	message += formatScoreReport(res, sentiment.Analyze(improved))
	return h.client.SendMessage(channelID, message)
}

// HandleList shows posts filtered by status and sorted by posting date
func (h *CommandHandler) HandleList(ctx context.Context, channelID string, args []string) error {
	opts := database.ListOptions{Sort: database.SortAscending}
	title := "📋 *All Posts*"

	for _, arg := range args {
		switch strings.ToLower(arg) {
		case models.StatusQueued, models.StatusScheduled, models.StatusDraft:
			opts.Status = strings.ToLower(arg)
			title = fmt.Sprintf("📋 *%s Posts*", capitalize(opts.Status))
		case "all":
			opts.Status = ""
		case "asc", "ascending":
			opts.Sort = database.SortAscending
		case "desc", "descending":
			opts.Sort = database.SortDescending
		}
	}

	posts, err := h.postRepo.List(ctx, opts)
	if err != nil {
		slog.Error("❌ Failed to list posts", "error", err)
		return h.client.SendMessage(channelID, "❌ Failed to fetch posts")
	}

	if len(posts) == 0 {
		return h.client.SendMessage(channelID, "📭 No posts found. Use `add your caption` to create one!")
	}

	return h.client.SendMessage(channelID, formatPostList(title, posts, maxListed))
}

// HandleFind searches captions case-insensitively
func (h *CommandHandler) HandleFind(ctx context.Context, channelID, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return h.client.SendMessage(channelID, "Please provide search text: `find your words`")
	}

	posts, err := h.postRepo.List(ctx, database.ListOptions{Search: query, Sort: database.SortAscending})
	if err != nil {
		slog.Error("❌ Failed to search posts", "error", err)
		return h.client.SendMessage(channelID, "❌ Failed to search posts")
	}

	if len(posts) == 0 {
		return h.client.SendMessage(channelID, fmt.Sprintf("📭 No posts matching '%s'", query))
	}

	return h.client.SendMessage(channelID, formatPostList(fmt.Sprintf("🔎 *Posts matching '%s'*", query), posts, maxListed))
}

// HandleSchedule schedules queued posts
func (h *CommandHandler) HandleSchedule(ctx context.Context, channelID string, args []string) error {
	slog.Info("📅 Handling schedule command", "args", args)

	postsPerDay := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return h.client.SendMessage(channelID, "❌ Posts per day must be a number between 1 and 4")
		}
		postsPerDay = n
	}

	if postsPerDay < 1 || postsPerDay > 4 {
		return h.client.SendMessage(channelID, "❌ Posts per day must be between 1 and 4")
	}

	config := agents.ScheduleConfig{
		PostsPerDay: postsPerDay,
		StartDate:   time.Now().In(h.location).AddDate(0, 0, 1),
		Timezone:    h.timezone,
	}

	scheduledCount, err := h.scheduler.ScheduleQueued(ctx, config)
	if err != nil {
		slog.Error("❌ Failed to schedule posts", "error", err)
		return h.client.SendMessage(channelID, "❌ Failed to schedule posts. Please try again.")
	}

	if scheduledCount == 0 {
		return h.client.SendMessage(channelID, "📭 No queued posts to schedule. Add some with `add your caption`!")
	}

	message := fmt.Sprintf("✅ *Scheduled %d posts!* (%d per day, starting tomorrow)\n\n", scheduledCount, postsPerDay)
	message += "Use `view schedule` to see the calendar."
	return h.client.SendMessage(channelID, message)
}

// HandleReschedule moves one post to a new date
func (h *CommandHandler) HandleReschedule(ctx context.Context, channelID string, args []string) error {
	if len(args) < 2 {
		return h.client.SendMessage(channelID, "Usage: `reschedule <post-id> <YYYY-MM-DD>`")
	}

	date, err := parseDate(args[1], h.location)
	if err != nil {
		return h.client.SendMessage(channelID, "❌ "+err.Error())
	}

	post, err := h.scheduler.Reschedule(ctx, args[0], date)
	if err != nil {
		return h.replyLookupError(channelID, args[0], err)
	}

	return h.client.SendMessage(channelID, fmt.Sprintf("📅 Post `%s` scheduled for %s (score %d)", post.ID, date.Format("Jan 02, 2006"), post.Score))
}

func (h *CommandHandler) HandleUnschedule(ctx context.Context, channelID, postID string) error {
	post, err := h.scheduler.Unschedule(ctx, postID)
	if err != nil {
		return h.replyLookupError(channelID, postID, err)
	}

	return h.client.SendMessage(channelID, fmt.Sprintf("↩️ Post `%s` moved back to the queue (score %d)", post.ID, post.Score))
}

func (h *CommandHandler) HandleDelete(ctx context.Context, channelID, postID string) error {
	if err := h.postRepo.Delete(ctx, postID); err != nil {
		return h.replyLookupError(channelID, postID, err)
	}

	return h.client.SendMessage(channelID, fmt.Sprintf("🗑️ Deleted post `%s`", postID))
}

// HandleViewSchedule shows the current schedule
func (h *CommandHandler) HandleViewSchedule(ctx context.Context, channelID string, days int) error {
	if days <= 0 {
		days = 7
	}

	schedule, err := h.scheduler.Upcoming(ctx, days, h.timezone)
	if err != nil {
		slog.Error("❌ Failed to fetch schedule", "error", err)
		return h.client.SendMessage(channelID, "❌ Failed to fetch schedule")
	}

	if len(schedule) == 0 {
		return h.client.SendMessage(channelID, "📭 No posts scheduled. Use `schedule` to schedule queued posts!")
	}

	return h.client.SendMessage(channelID, formatPostList(fmt.Sprintf("📅 *Posting Schedule* (next %d days)", days), schedule, len(schedule)))
}

func (h *CommandHandler) HandleStats(ctx context.Context, channelID string) error {
	counts, err := h.postRepo.CountByStatus(ctx)
	if err != nil {
		return h.client.SendMessage(channelID, "❌ Failed to fetch stats")
	}

	posts, err := h.postRepo.List(ctx, database.ListOptions{})
	if err != nil {
		return h.client.SendMessage(channelID, "❌ Failed to fetch posts")
	}

	return h.client.SendMessage(channelID, formatStats(counts, posts))
}

func (h *CommandHandler) replyLookupError(channelID, postID string, err error) error {
	if errors.Is(err, database.ErrPostNotFound) {
		return h.client.SendMessage(channelID, fmt.Sprintf("❌ No post with id `%s`", postID))
	}
	slog.Error("❌ Post command failed", "post_id", postID, "error", err)
	return h.client.SendMessage(channelID, "❌ "+err.Error())
}

func formatStats(counts map[string]int, posts []*models.Post) string {
	total := 0
	for _, n := range counts {
		total += n
	}

	stats := "*Post Statistics*\n\n"
	stats += fmt.Sprintf("Total posts: *%d*\n", total)
	for _, status := range []string{models.StatusScheduled, models.StatusQueued, models.StatusDraft} {
		stats += fmt.Sprintf("• %s: %d\n", status, counts[status])
	}

	if len(posts) == 0 {
		return stats
	}

	sum := 0
	best := posts[0]
	for _, p := range posts {
		sum += p.Score
		if p.Score > best.Score {
			best = p
		}
	}

	stats += fmt.Sprintf("\nAverage score: *%d*\n", sum/len(posts))
	stats += fmt.Sprintf("Top post (%d): %s\n", best.Score, best.Preview(60))
	return stats
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
