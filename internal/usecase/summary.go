package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
)

// CounterSummary describes one contribution counter across all fetched users.
type CounterSummary struct {
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Max    int     `json:"max"`
}

// Summary aggregates a user list. Counter summaries only consider users in the stats state.
type Summary struct {
	Users              int            `json:"users"`
	Fetched            int            `json:"fetched"`
	Failed             int            `json:"failed"`
	Unfetched          int            `json:"unfetched"`
	Commits            CounterSummary `json:"commits"`
	Issues             CounterSummary `json:"issues"`
	PullRequests       CounterSummary `json:"pull_requests"`
	PullRequestReviews CounterSummary `json:"pull_request_reviews"`
	Repositories       CounterSummary `json:"repositories"`
}

// Summarize computes totals, means, medians and maxima per counter.
func Summarize(users []domain.TrackedUser) Summary {
	s := Summary{Users: len(users)}

	var commits, issues, prs, reviews, repos stats.Float64Data
	for _, u := range users {
		switch u.State() {
		case domain.StateStats:
			s.Fetched++
			commits = append(commits, float64(u.Stats.Commits))
			issues = append(issues, float64(u.Stats.Issues))
			prs = append(prs, float64(u.Stats.PullRequests))
			reviews = append(reviews, float64(u.Stats.PullRequestReviews))
			repos = append(repos, float64(u.Stats.Repositories))
		case domain.StateError:
			s.Failed++
		default:
			s.Unfetched++
		}
	}

	s.Commits = summarizeCounter(commits)
	s.Issues = summarizeCounter(issues)
	s.PullRequests = summarizeCounter(prs)
	s.PullRequestReviews = summarizeCounter(reviews)
	s.Repositories = summarizeCounter(repos)
	return s
}

func summarizeCounter(data stats.Float64Data) CounterSummary {
	if data.Len() == 0 {
		return CounterSummary{}
	}
	// Errors are only returned for empty input, which is handled above.
	total, _ := data.Sum()
	mean, _ := data.Mean()
	median, _ := data.Median()
	maximum, _ := data.Max()
	return CounterSummary{
		Total:  int(total),
		Mean:   mean,
		Median: median,
		Max:    int(maximum),
	}
}
