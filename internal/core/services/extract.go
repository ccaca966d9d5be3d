package services

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON indicates a model response carried no extractable JSON object.
var ErrNoJSON = errors.New("no JSON found in model response")

var (
	fencedJSONRegex = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	fencedRegex     = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// extractJSON pulls a JSON object out of raw model output. Models wrap
// JSON in markdown code fences more often than not, so fenced blocks are
// preferred over a bare object scan.
func extractJSON(response string) (string, error) {
	if m := fencedJSONRegex.FindStringSubmatch(response); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			return s, nil
		}
	}
	if m := fencedRegex.FindStringSubmatch(response); m != nil {
		if s := strings.TrimSpace(m[1]); strings.HasPrefix(s, "{") {
			return s, nil
		}
	}

	// Bare object: first opening brace through the matching last brace.
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(response[start : end+1]), nil
	}

	return "", ErrNoJSON
}
