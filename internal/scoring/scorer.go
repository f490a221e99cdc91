package scoring

import (
	"strings"
	"unicode/utf8"
)

// Feedback lines, in the order the signals are evaluated.
const (
	FeedbackGoodLength = "good length"
	FeedbackExpand     = "expand"
	FeedbackShorten    = "shorten"
	FeedbackSchedule   = "schedule this post"
	FeedbackAddMedia   = "add visual content"
	FeedbackHashtags   = "add hashtags"
	FeedbackQuestion   = "add a question"
)

const (
	MaxScore = 100

	lengthFullPoints    = 30
	lengthPartialPoints = 20
	lengthMinimalPoints = 10
	schedulePoints      = 20
	mediaPoints         = 20
	categoryPoints      = 10
	hashtagPoints       = 10
	ctaPoints           = 10

	fullMin    = 50
	fullMax    = 200
	partialMin = 20
	partialMax = 300
)

var callToActionWords = []string{
	"click", "visit", "learn", "discover", "try",
	"get", "download", "sign up", "join", "follow",
}

// Attributes are the post fields the scorer looks at besides the message.
// Nil or out-of-range date parts count as unscheduled.
type Attributes struct {
	Category       string
	HasImage       bool
	HasVideo       bool
	ScheduledMonth *int
	ScheduledDay   *int
	ScheduledYear  *int
}

type Result struct {
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

// Score rates how likely a post is to get engagement. The result is
// deterministic and Score is always within [0, MaxScore].
func Score(message string, attrs Attributes) Result {
	var points int
	feedback := make([]string, 0, 5)

	n := utf8.RuneCountInString(message)
	switch {
	case n >= fullMin && n <= fullMax:
		points += lengthFullPoints
		feedback = append(feedback, FeedbackGoodLength)
	case n >= partialMin && n <= partialMax:
		points += lengthPartialPoints
	default:
		points += lengthMinimalPoints
	}
	if n < fullMin {
		feedback = append(feedback, FeedbackExpand)
	} else if n > fullMax {
		feedback = append(feedback, FeedbackShorten)
	}

	if attrs.Scheduled() {
		points += schedulePoints
	} else {
		feedback = append(feedback, FeedbackSchedule)
	}

	if attrs.HasImage || attrs.HasVideo {
		points += mediaPoints
	} else {
		feedback = append(feedback, FeedbackAddMedia)
	}

	if strings.TrimSpace(attrs.Category) != "" {
		points += categoryPoints
	}

	if strings.Contains(message, "#") {
		points += hashtagPoints
	} else {
		feedback = append(feedback, FeedbackHashtags)
	}

	if HasCallToAction(message) {
		points += ctaPoints
	}

	// Questions only produce a tip.
	if !strings.Contains(message, "?") {
		feedback = append(feedback, FeedbackQuestion)
	}

	return Result{Score: min(points, MaxScore), Feedback: feedback}
}

// Scheduled reports whether month, day and year are all present and in range.
func (a Attributes) Scheduled() bool {
	return inRange(a.ScheduledMonth, 1, 12) &&
		inRange(a.ScheduledDay, 1, 31) &&
		inRange(a.ScheduledYear, 1, 9999)
}

// HasCallToAction matches the vocabulary as plain substrings, ignoring case.
func HasCallToAction(message string) bool {
	lower := strings.ToLower(message)
	for _, w := range callToActionWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Grade labels a score for display.
func Grade(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "fair"
	default:
		return "poor"
	}
}

func inRange(v *int, lo, hi int) bool {
	return v != nil && *v >= lo && *v <= hi
}
