// Package domain defines the core business entities for Komenta.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Comment: A raw comment fetched from the upstream provider
//   - AnnotatedComment: A comment plus bot and sentiment classifications
//   - Query: One analysis request (username, video URL, or keyword)
//   - AggregateResult: The reduced output of one analysis run
//   - SearchRecord: A saved run, recallable from history
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
