package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shubh-37/post-scheduler/internal/models"
)

// PostStore is the slice of the post repository the scheduler needs.
type PostStore interface {
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetByStatus(ctx context.Context, status string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
}

type Scheduler struct {
	posts PostStore
	now   func() time.Time
}

type ScheduleConfig struct {
	PostsPerDay int
	StartDate   time.Time
	Timezone    string
}

func NewScheduler(posts PostStore) *Scheduler {
	return &Scheduler{
		posts: posts,
		now:   time.Now,
	}
}

// ScheduleQueued spreads queued posts over consecutive days starting at
// config.StartDate, PostsPerDay per day. Each post is rescored after it moves.
func (s *Scheduler) ScheduleQueued(ctx context.Context, config ScheduleConfig) (int, error) {
	if config.PostsPerDay < 1 || config.PostsPerDay > 4 {
		return 0, fmt.Errorf("posts per day must be between 1 and 4, got %d", config.PostsPerDay)
	}

	queued, err := s.posts.GetByStatus(ctx, models.StatusQueued)
	if err != nil {
		return 0, fmt.Errorf("failed to get queued posts: %w", err)
	}

	if len(queued) == 0 {
		return 0, nil
	}

	location := loadLocation(config.Timezone)
	start := config.StartDate
	if start.IsZero() {
		start = s.now().AddDate(0, 0, 1)
	}
	currentDate := start.In(location)

	scheduledCount := 0
	slot := 0
	for _, post := range queued {
		post.ScheduleOn(currentDate)
		post.Rescore()

		if err := s.posts.Update(ctx, post); err != nil {
			slog.Warn("⚠️ Failed to schedule post", "post_id", post.ID, "error", err)
			continue
		}

		scheduledCount++

		slot++
		if slot >= config.PostsPerDay {
			slot = 0
			currentDate = currentDate.AddDate(0, 0, 1)
		}
	}

	return scheduledCount, nil
}

// Upcoming returns scheduled posts whose date falls within the next days.
func (s *Scheduler) Upcoming(ctx context.Context, days int, timezone string) ([]*models.Post, error) {
	scheduled, err := s.posts.GetByStatus(ctx, models.StatusScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled posts: %w", err)
	}

	location := loadLocation(timezone)
	now := s.now().In(location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, location)
	cutoff := today.AddDate(0, 0, days)

	var upcoming []*models.Post
	for _, post := range scheduled {
		date, ok := post.ScheduledDate(location)
		if ok && !date.Before(today) && date.Before(cutoff) {
			upcoming = append(upcoming, post)
		}
	}

	return upcoming, nil
}

// Reschedule moves a post to a new date. Queued posts become scheduled.
func (s *Scheduler) Reschedule(ctx context.Context, postID string, date time.Time) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if post.Status == models.StatusDraft {
		return nil, fmt.Errorf("post is still a draft, keep it first")
	}

	post.ScheduleOn(date)
	post.Rescore()
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to reschedule post: %w", err)
	}

	return post, nil
}

func (s *Scheduler) Unschedule(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	if post.Status == models.StatusDraft {
		return nil, fmt.Errorf("post is still a draft, keep it first")
	}

	post.Unschedule()
	post.Rescore()
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to cancel schedule: %w", err)
	}

	return post, nil
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("Unknown timezone, using UTC", "timezone", name)
		return time.UTC
	}
	return location
}
