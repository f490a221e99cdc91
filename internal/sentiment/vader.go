// Package sentiment reports the tone of a caption. It is shown next to the
// engagement score and never changes it.
package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"

	threshold = 0.20
)

var (
	analyzer = govader.NewSentimentIntensityAnalyzer()

	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	slackLink   = regexp.MustCompile(`<(https?://[^|>]+)(?:\|([^>]*))?>`)
	htmlTag     = regexp.MustCompile(`<[^>]+>`)
)

type Tone struct {
	Compound float64 `json:"compound"`
	Label    string  `json:"label"`
}

func RemoveLinks(input string) string {
	input = slackLink.ReplaceAllString(input, "$2")
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ToPlainText renders markdown and strips the markup so VADER only sees words.
func ToPlainText(input string) string {
	input = RemoveLinks(input)
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := htmlTag.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plain), " ")
}

func Analyze(text string) Tone {
	plain := ToPlainText(text)
	if plain == "" {
		return Tone{Label: Neutral}
	}

	score := analyzer.PolarityScores(plain).Compound
	return Tone{Compound: score, Label: Label(score)}
}

func Label(compound float64) string {
	switch {
	case compound >= threshold:
		return Positive
	case compound <= -threshold:
		return Negative
	default:
		return Neutral
	}
}
