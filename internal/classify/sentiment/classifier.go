// Package sentiment assigns one of three sentiment labels to comment text
// via lexical matching. Deliberately a precedence rule over fixed lexicons
// rather than a weighted model: identical text always yields the identical
// label, with no batch dependency.
package sentiment

import (
	"strings"

	"github.com/custodia-labs/komenta/internal/core/domain"
)

// The corpus is heavily mixed Indonesian/English, so both lexicons carry
// terms and slang from both languages, profanity included.

// positiveTerms match text expressing approval.
var positiveTerms = []string{
	// English
	"love", "great", "awesome", "amazing", "excellent", "good", "best",
	"perfect", "wonderful", "beautiful", "nice", "cool", "fire", "lit",
	// Indonesian
	"bagus", "keren", "mantap", "mantul", "hebat", "suka", "cinta",
	"luar biasa", "gokil", "kece", "terbaik", "sukses", "semangat",
}

// negativeTerms match text expressing disapproval.
var negativeTerms = []string{
	// English
	"hate", "bad", "terrible", "awful", "worst", "horrible", "poor",
	"disappointing", "trash", "cringe",
	// Indonesian
	"jelek", "buruk", "benci", "sampah", "parah", "payah", "norak",
	"alay", "anjing", "goblok", "bodoh", "tolol", "kampret", "gagal",
}

// Classify labels one comment text. Positive-only matches label positive,
// negative-only negative; both or neither label neutral.
func Classify(text string) domain.Sentiment {
	lower := strings.ToLower(text)

	hasPositive := containsAny(lower, positiveTerms)
	hasNegative := containsAny(lower, negativeTerms)

	switch {
	case hasPositive && !hasNegative:
		return domain.SentimentPositive
	case hasNegative && !hasPositive:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// Annotate assigns sentiment labels to an annotated batch in place of the
// zero values left by bot classification, returning the same slice.
func Annotate(comments []domain.AnnotatedComment) []domain.AnnotatedComment {
	for i := range comments {
		comments[i].Sentiment = Classify(comments[i].Text)
	}
	return comments
}

func containsAny(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
