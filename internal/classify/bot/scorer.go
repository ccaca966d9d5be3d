// Package bot scores comment batches against independent suspicion
// signals. The scorer is pure and deterministic: identical input yields
// identical scores, with no I/O and no randomness, so downstream risk
// aggregation can compare scores across runs.
package bot

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/komenta/internal/core/domain"
)

// Threshold is the score at or above which a comment is flagged as a bot.
// A tunable constant, not a derived value.
const Threshold = 4

// Signal point weights.
const (
	pointsTooShort       = 2
	pointsEmojiOnly      = 3
	pointsSpamPhrase     = 3
	pointsDuplicateText  = 2
	pointsDigitHandle    = 2
	pointsGenericHandle  = 1
	pointsDefaultAvatar  = 1
	pointsRapidFire      = 2
	pointsZeroEngagement = 1
	pointsRepeatedEmoji  = 2
)

const (
	// duplicateMin is the batch-wide occurrence count at which identical
	// text becomes suspicious.
	duplicateMin = 3

	// rapidFireWindow is the maximum gap in seconds between consecutive
	// comments for the rapid-fire signal.
	rapidFireWindow = 2

	// repeatedEmojiRun is the consecutive repeat count for the
	// repeated-emoji signal.
	repeatedEmojiRun = 3
)

// spamPhrases are the promotional patterns that mark engagement spam.
var spamPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)follow.{0,10}back`),
	regexp.MustCompile(`(?i)check.{0,10}bio`),
	regexp.MustCompile(`(?i)free.{0,10}gift`),
	regexp.MustCompile(`(?i)promo`),
	regexp.MustCompile(`(?i)giveaway`),
	regexp.MustCompile(`(?i)\bdm\b.{0,10}\bme\b`),
	regexp.MustCompile(`(?i)click.{0,10}link`),
	regexp.MustCompile(`(?i)telegram`),
	regexp.MustCompile(`(?i)whatsapp`),
}

var (
	digitRunRegex      = regexp.MustCompile(`[0-9]{4,}`)
	genericHandleRegex = regexp.MustCompile(`^[a-zA-Z0-9._]*$`)
)

// Classify scores a batch of comments and returns annotated copies.
// Sentiment is not assigned here. Malformed input never panics: absent
// fields simply contribute nothing to their signal.
func Classify(comments []domain.Comment) []domain.AnnotatedComment {
	dupes := duplicateCounts(comments)

	out := make([]domain.AnnotatedComment, len(comments))
	for i, c := range comments {
		score := Score(c, batchContext{
			duplicates: dupes,
			prev:       previous(comments, i),
		})
		out[i] = domain.AnnotatedComment{
			Comment:  c,
			BotScore: score,
			IsBot:    score >= Threshold,
		}
	}
	return out
}

// batchContext carries the batch-dependent inputs of the scorer.
type batchContext struct {
	duplicates map[string]int
	prev       *domain.Comment
}

// Score accumulates the suspicion points for one comment.
func Score(c domain.Comment, batch batchContext) int {
	score := 0
	text := c.Text
	trimmed := strings.TrimSpace(text)

	if utf8.RuneCountInString(trimmed) <= 3 {
		score += pointsTooShort
	}

	if utf8.RuneCountInString(text) <= 8 && isEmojiOnly(text) {
		score += pointsEmojiOnly
	}

	for _, re := range spamPhrases {
		if re.MatchString(text) {
			score += pointsSpamPhrase
			break
		}
	}

	if key := strings.ToLower(trimmed); key != "" && batch.duplicates[key] >= duplicateMin {
		score += pointsDuplicateText
	}

	handle := c.Author.Handle
	if digitRunRegex.MatchString(handle) {
		score += pointsDigitHandle
	}
	if handle != "" && len(handle) < 4 && genericHandleRegex.MatchString(handle) {
		score += pointsGenericHandle
	}

	avatar := strings.ToLower(c.Author.AvatarURL)
	if avatar == "" || strings.Contains(avatar, "default") || strings.Contains(avatar, "avatar") {
		score += pointsDefaultAvatar
	}

	if batch.prev != nil && c.HasTimestamp() && batch.prev.HasTimestamp() {
		gap := c.CreatedAt - batch.prev.CreatedAt
		if gap < 0 {
			gap = -gap
		}
		if gap < rapidFireWindow {
			score += pointsRapidFire
		}
	}

	if c.LikeCount == 0 && utf8.RuneCountInString(text) < 6 {
		score += pointsZeroEngagement
	}

	if hasRepeatedEmoji(text, repeatedEmojiRun) {
		score += pointsRepeatedEmoji
	}

	return score
}

// duplicateCounts maps lowercase-trimmed text to its occurrence count
// across the batch.
func duplicateCounts(comments []domain.Comment) map[string]int {
	counts := make(map[string]int, len(comments))
	for _, c := range comments {
		key := strings.ToLower(strings.TrimSpace(c.Text))
		if key != "" {
			counts[key]++
		}
	}
	return counts
}

// previous returns the preceding comment in batch order, or nil.
func previous(comments []domain.Comment, i int) *domain.Comment {
	if i == 0 {
		return nil
	}
	return &comments[i-1]
}
