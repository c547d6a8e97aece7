// Package domain contains the core data structures and domain logic for the application.
package domain

import "strings"

// ContributionStats holds the five contribution counters GitHub reports
// for a user within a date window.
type ContributionStats struct {
	Commits            int `json:"commits"`
	Issues             int `json:"issues"`
	PullRequests       int `json:"pull_requests"`
	PullRequestReviews int `json:"pull_request_reviews"`
	// Repositories is the number of repositories the user created in the window.
	Repositories int `json:"repositories"`
}

// UserState describes where a tracked user is in the fetch pipeline.
type UserState int

const (
	StateUnfetched UserState = iota
	StateStats
	StateError
)

func (s UserState) String() string {
	switch s {
	case StateStats:
		return "stats"
	case StateError:
		return "error"
	default:
		return "unfetched"
	}
}

// TrackedUser is a single entry of the user list.
// Stats and Error are mutually exclusive; an entry with neither has not been fetched yet.
type TrackedUser struct {
	Username string             `json:"username"`
	Stats    *ContributionStats `json:"stats,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Key returns the case-insensitive identity of the user.
func (u TrackedUser) Key() string {
	return NormalizeUsername(u.Username)
}

// State reports the pipeline state derived from Stats and Error.
func (u TrackedUser) State() UserState {
	switch {
	case u.Error != "":
		return StateError
	case u.Stats != nil:
		return StateStats
	default:
		return StateUnfetched
	}
}

// NormalizeUsername lowercases a username for comparison.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SplitUsernames parses a comma-separated list into trimmed, non-empty names.
func SplitUsernames(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
