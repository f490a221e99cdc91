package slack

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shubh-37/post-scheduler/internal/models"
	"github.com/shubh-37/post-scheduler/internal/scoring"
	"github.com/shubh-37/post-scheduler/internal/sentiment"
)

const dateLayout = "2006-01-02"

// postInput is a post described in a command: leading option tokens followed by the message.
//
//	category:<name>  +image  +video  date:YYYY-MM-DD
type postInput struct {
	Message  string
	Category string
	HasImage bool
	HasVideo bool
	Date     *time.Time
}

func parsePostInput(args string, loc *time.Location) (postInput, error) {
	var in postInput
	rest := strings.TrimSpace(args)

	for rest != "" {
		token, remainder := cutSpace(rest)
		lower := strings.ToLower(token)

		switch {
		case strings.HasPrefix(lower, "category:"):
			in.Category = strings.TrimSpace(token[len("category:"):])
		case lower == "+image":
			in.HasImage = true
		case lower == "+video":
			in.HasVideo = true
		case strings.HasPrefix(lower, "date:"):
			date, err := parseDate(token[len("date:"):], loc)
			if err != nil {
				return in, err
			}
			in.Date = &date
		default:
			in.Message = rest
			return in, nil
		}
		rest = strings.TrimSpace(remainder)
	}

	return in, nil
}

// cutSpace splits s around its first run of whitespace. Newlines and tabs
// separate tokens the same way spaces do.
func cutSpace(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return date, nil
}

// toPost builds a queued post, scheduled when a date was given, and scores it.
func (in postInput) toPost() *models.Post {
	post := models.NewPost(in.Message, in.Category)
	post.HasImage = in.HasImage
	post.HasVideo = in.HasVideo
	if in.Date != nil {
		post.ScheduleOn(*in.Date)
	}
	post.Rescore()
	return post
}

func formatScoreReport(res scoring.Result, tone sentiment.Tone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Score: %d/100* (%s)\n", res.Score, scoring.Grade(res.Score))
	fmt.Fprintf(&b, "🎭 Tone: %s (%.2f)\n", tone.Label, tone.Compound)
	if len(res.Feedback) > 0 {
		b.WriteString("\n*Feedback:*\n")
		for _, f := range res.Feedback {
			fmt.Fprintf(&b, "• %s\n", f)
		}
	}
	return b.String()
}

func formatPostLine(i int, post *models.Post) string {
	date := "unscheduled"
	if d, ok := post.ScheduledDate(time.UTC); ok {
		date = d.Format("Jan 02, 2006")
	}

	category := post.Category
	if category == "" {
		category = "-"
	}

	media := ""
	if post.HasImage {
		media += " 🖼️"
	}
	if post.HasVideo {
		media += " 🎬"
	}

	return fmt.Sprintf("*%d.* 📅 %s · %s · score %d%s\n%s\n`%s`\n",
		i, date, category, post.Score, media, post.Preview(100), post.ID)
}

func formatPostList(title string, posts []*models.Post, max int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d)\n\n", title, len(posts))
	for i, post := range posts {
		if i >= max {
			fmt.Fprintf(&b, "_...and %d more_\n", len(posts)-max)
			break
		}
		b.WriteString(formatPostLine(i+1, post))
		b.WriteString("\n")
	}
	return b.String()
}
