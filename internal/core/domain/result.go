package domain

// SentimentCounts is the per-label breakdown of a comment set.
type SentimentCounts struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// PlatformBreakdown counts comments per source platform.
// Only TikTok is populated today; the other platforms are kept in the
// response shape for dashboard compatibility.
type PlatformBreakdown struct {
	TikTok    int `json:"tiktok"`
	Instagram int `json:"instagram"`
	YouTube   int `json:"youtube"`
	Facebook  int `json:"facebook"`
}

// AggregateResult is the output contract of one analysis run.
// Every count is a pure reduction over Comments; no field is independently
// mutable, which keeps the list and its summary from drifting apart.
type AggregateResult struct {
	Query     string    `json:"query"`
	QueryType QueryType `json:"queryType"`

	Comments []AnnotatedComment `json:"comments"`

	TotalComments int `json:"totalComments"`
	RealComments  int `json:"realComments"`
	BotComments   int `json:"botComments"`
	UniqueAuthors int `json:"uniqueAuthors"`

	SentimentCounts   SentimentCounts   `json:"sentimentCounts"`
	PlatformBreakdown PlatformBreakdown `json:"platformBreakdown"`

	VideosAnalyzed int `json:"videosAnalyzed"`
	TotalVideos    int `json:"totalVideos"`
	FailedVideos   int `json:"failedVideos"`

	// Cursor and HasMore let the caller resume single-video pagination.
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"hasMore"`

	// VideoStats is populated for single-video runs when the info
	// endpoint succeeds.
	VideoStats *VideoStats `json:"videoStats,omitempty"`
}

// Summarize derives all aggregate counts from an annotated comment set.
// It is the only way counts enter an AggregateResult.
func Summarize(comments []AnnotatedComment) AggregateResult {
	r := AggregateResult{
		Comments:      comments,
		TotalComments: len(comments),
	}

	authors := make(map[string]struct{}, len(comments))
	for _, c := range comments {
		if c.IsBot {
			r.BotComments++
		} else {
			r.RealComments++
		}

		switch c.Sentiment {
		case SentimentPositive:
			r.SentimentCounts.Positive++
		case SentimentNegative:
			r.SentimentCounts.Negative++
		default:
			r.SentimentCounts.Neutral++
		}

		if id := c.Author.Identifier(); id != "" {
			authors[id] = struct{}{}
		}
	}
	r.UniqueAuthors = len(authors)
	r.PlatformBreakdown.TikTok = len(comments)

	return r
}
