// Package gateway provides a gateway to the GitHub GraphQL API,
// abstracting away the underlying client and transport.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
)

// DefaultEndpoint is the public GitHub GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// ContributionsFetcher defines the behavior of a gateway for fetching contribution counts.
type ContributionsFetcher interface {
	// FetchContributions returns the counters for login between from and to (both inclusive instants).
	// Errors wrap domain.ErrTransport or domain.ErrUserNotFound.
	FetchContributions(ctx context.Context, login string, from, to time.Time) (domain.ContributionStats, error)
}

// GitHubGateway is the concrete implementation of the ContributionsFetcher interface.
type GitHubGateway struct {
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// contributionsQuery maps to:
//
//	user(login: $login) { login contributionsCollection(from: $from, to: $to) { total... } }
type contributionsQuery struct {
	User struct {
		Login                   githubv4.String
		ContributionsCollection struct {
			TotalCommitContributions            githubv4.Int
			TotalIssueContributions             githubv4.Int
			TotalPullRequestContributions       githubv4.Int
			TotalPullRequestReviewContributions githubv4.Int
			TotalRepositoryContributions        githubv4.Int
		} `graphql:"contributionsCollection(from: $from, to: $to)"`
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway creates a gateway for endpoint. An empty token sends anonymous requests.
func NewGitHubGateway(token, endpoint string, logger *log.Logger) (ContributionsFetcher, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid GraphQL endpoint %q: %w", endpoint, err)
	}

	httpClient := &http.Client{}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{
			Base:   http.DefaultTransport,
			Source: ts,
		}
	} else {
		logger.Println("No token configured, sending anonymous requests.")
	}
	return NewGitHubGatewayWithClient(endpoint, httpClient, logger), nil
}

// NewGitHubGatewayWithClient builds a gateway on top of an existing HTTP client,
// e.g. for GitHub Enterprise or a test server. Non-200 responses are reported
// as transport errors.
func NewGitHubGatewayWithClient(endpoint string, httpClient *http.Client, logger *log.Logger) *GitHubGateway {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *httpClient
	wrapped.Transport = &statusTransport{base: base}
	return &GitHubGateway{
		graphqlClient: githubv4.NewEnterpriseClient(endpoint, &wrapped),
		logger:        logger,
	}
}

// FetchContributions runs a single parameterized query for login.
func (g *GitHubGateway) FetchContributions(ctx context.Context, login string, from, to time.Time) (domain.ContributionStats, error) {
	g.logger.Printf("Fetching contributions for %s (%s .. %s)...\n", login, from.Format(time.RFC3339), to.Format(time.RFC3339))

	variables := map[string]interface{}{
		"login": githubv4.String(login),
		"from":  githubv4.DateTime{Time: from},
		"to":    githubv4.DateTime{Time: to},
	}
	var q contributionsQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		g.logger.Printf("  Query for %s failed: %v\n", login, err)
		return domain.ContributionStats{}, classify(err)
	}
	if q.User.Login == "" {
		return domain.ContributionStats{}, fmt.Errorf("%w: %s", domain.ErrUserNotFound, login)
	}

	c := q.User.ContributionsCollection
	stats := domain.ContributionStats{
		Commits:            int(c.TotalCommitContributions),
		Issues:             int(c.TotalIssueContributions),
		PullRequests:       int(c.TotalPullRequestContributions),
		PullRequestReviews: int(c.TotalPullRequestReviewContributions),
		Repositories:       int(c.TotalRepositoryContributions),
	}
	g.logger.Printf("Completed fetching contributions for %s.\n", login)
	return stats, nil
}

// classify splits client errors into transport failures and API-level errors.
// The GraphQL client returns response errors as plain values, so anything
// that is not an HTTP or decoding failure is treated as an API-level error.
func classify(err error) error {
	var urlErr *url.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &urlErr),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrUserNotFound, err)
	}
}
