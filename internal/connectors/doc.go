// Package connectors provides implementations of the CommentSource
// interface for scraping providers. Each connector knows how to fetch
// comments and video listings from one upstream API and owns that
// provider's pagination, retry, and rate limit policy.
package connectors
