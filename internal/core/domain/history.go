package domain

import "time"

// SearchRecord is one saved analysis run, kept so past queries can be
// recalled from the CLI without refetching.
type SearchRecord struct {
	// ID is a generated unique identifier.
	ID string `json:"id"`

	// Query is the original query text.
	Query string `json:"query"`

	// Type is the query type that was run.
	Type QueryType `json:"type"`

	// TotalComments, RealComments and BotComments mirror the aggregate
	// counts of the run that produced this record.
	TotalComments int `json:"totalComments"`
	RealComments  int `json:"realComments"`
	BotComments   int `json:"botComments"`

	// VideosAnalyzed is the number of videos that contributed comments.
	VideosAnalyzed int `json:"videosAnalyzed"`

	// CreatedAt is when the run completed.
	CreatedAt time.Time `json:"createdAt"`
}
