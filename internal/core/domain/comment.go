package domain

// Sentiment is the lexical sentiment label attached to a comment.
type Sentiment string

const (
	// SentimentPositive indicates only positive lexicon terms matched.
	SentimentPositive Sentiment = "positive"

	// SentimentNegative indicates only negative lexicon terms matched.
	SentimentNegative Sentiment = "negative"

	// SentimentNeutral indicates both or neither lexicon matched.
	SentimentNeutral Sentiment = "neutral"
)

// Author identifies the account that wrote a comment.
// Any field may be empty when the upstream payload omits it.
type Author struct {
	// Handle is the unique account handle (e.g. "jokowi_fans88").
	Handle string `json:"handle"`

	// DisplayName is the human-readable account name.
	DisplayName string `json:"displayName,omitempty"`

	// AvatarURL is the profile picture URL.
	AvatarURL string `json:"avatarUrl,omitempty"`

	// ID is the platform-internal account identifier.
	// Used as a uniqueness fallback when Handle is empty.
	ID string `json:"id,omitempty"`
}

// Identifier returns the best available unique key for the author:
// the handle, falling back to the internal account id.
func (a Author) Identifier() string {
	if a.Handle != "" {
		return a.Handle
	}
	return a.ID
}

// Comment is a single raw comment as fetched from the upstream provider.
// IDs are only unique within one video's comment set; callers must scope
// uniqueness by (VideoID, ID).
type Comment struct {
	// ID is the upstream comment identifier.
	ID string `json:"id"`

	// Text is the comment body. May be empty.
	Text string `json:"text"`

	// Author is the commenting account.
	Author Author `json:"author"`

	// LikeCount is the number of likes; zero when absent upstream.
	LikeCount int `json:"likeCount"`

	// CreatedAt is the Unix creation time in seconds.
	// Zero or negative values must be treated as unknown.
	CreatedAt int64 `json:"createdAt"`

	// Platform is the source platform (currently always "tiktok").
	Platform string `json:"platform,omitempty"`

	// VideoID scopes the comment to the video it was posted under.
	VideoID string `json:"videoId,omitempty"`

	// VideoURL is the canonical URL of that video.
	VideoURL string `json:"videoUrl,omitempty"`
}

// HasTimestamp reports whether CreatedAt carries a usable value.
func (c Comment) HasTimestamp() bool {
	return c.CreatedAt > 0
}

// AnnotatedComment is a Comment plus derived classification fields.
// It is produced exactly once per raw comment and never mutated afterwards;
// classifiers copy the raw comment rather than writing through it.
type AnnotatedComment struct {
	Comment

	// IsBot is true when BotScore reached the classifier threshold.
	IsBot bool `json:"isBot"`

	// BotScore is the accumulated suspicion score. Stable and comparable
	// across comments so per-account risk profiles can be derived from it.
	BotScore int `json:"botScore"`

	// Sentiment is the lexical sentiment label.
	Sentiment Sentiment `json:"sentiment"`
}
