package models

import (
	"time"

	"github.com/shubh-37/post-scheduler/internal/scoring"
)

const (
	StatusDraft     = "draft"     // AI variation waiting to be picked
	StatusQueued    = "queued"    // kept, no posting date yet
	StatusScheduled = "scheduled" // month, day and year all set
)

// Post represents a social media post in any stage
type Post struct {
	ID             string    `json:"id"`
	Message        string    `json:"message"`
	Category       string    `json:"category"`
	HasImage       bool      `json:"has_image"`
	HasVideo       bool      `json:"has_video"`
	ScheduledMonth *int      `json:"scheduled_month,omitempty"`
	ScheduledDay   *int      `json:"scheduled_day,omitempty"`
	ScheduledYear  *int      `json:"scheduled_year,omitempty"`
	Status         string    `json:"status"`
	Score          int       `json:"score"`
	Feedback       []string  `json:"feedback"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewPost creates a queued post and scores it
func NewPost(message, category string) *Post {
	now := time.Now()
	post := &Post{
		Message:   message,
		Category:  category,
		Status:    StatusQueued,
		Feedback:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	post.Rescore()
	return post
}

func (p *Post) Attributes() scoring.Attributes {
	return scoring.Attributes{
		Category:       p.Category,
		HasImage:       p.HasImage,
		HasVideo:       p.HasVideo,
		ScheduledMonth: p.ScheduledMonth,
		ScheduledDay:   p.ScheduledDay,
		ScheduledYear:  p.ScheduledYear,
	}
}

// Rescore recomputes Score and Feedback from the current message and attributes.
func (p *Post) Rescore() scoring.Result {
	res := scoring.Score(p.Message, p.Attributes())
	p.ApplyScore(res)
	return res
}

func (p *Post) ApplyScore(res scoring.Result) {
	p.Score = res.Score
	p.Feedback = res.Feedback
}

func (p *Post) IsScheduled() bool {
	return p.Attributes().Scheduled()
}

// ScheduleOn sets the posting date. Time of day is dropped.
func (p *Post) ScheduleOn(t time.Time) {
	month, day, year := int(t.Month()), t.Day(), t.Year()
	p.ScheduledMonth = &month
	p.ScheduledDay = &day
	p.ScheduledYear = &year
	p.Status = StatusScheduled
}

func (p *Post) Unschedule() {
	p.ScheduledMonth = nil
	p.ScheduledDay = nil
	p.ScheduledYear = nil
	p.Status = StatusQueued
}

// ScheduledDate returns midnight of the posting date in loc.
func (p *Post) ScheduledDate(loc *time.Location) (time.Time, bool) {
	if !p.IsScheduled() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(*p.ScheduledYear, time.Month(*p.ScheduledMonth), *p.ScheduledDay, 0, 0, 0, 0, loc), true
}

// Preview shortens the message to at most n runes for listings.
func (p *Post) Preview(n int) string {
	r := []rune(p.Message)
	if len(r) <= n {
		return p.Message
	}
	return string(r[:n]) + "..."
}
