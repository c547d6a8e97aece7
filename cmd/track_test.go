package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
	"github.com/naka-gawa/contrib-tracker/internal/usecase"
)

// stubFetcher returns the length of the login as commit count, and fails for "ghost".
type stubFetcher struct{}

func (stubFetcher) FetchContributions(ctx context.Context, login string, from, to time.Time) (domain.ContributionStats, error) {
	if login == "ghost" {
		return domain.ContributionStats{}, domain.ErrUserNotFound
	}
	return domain.ContributionStats{Commits: len(login)}, nil
}

func newTestSession(seed string) (*session, *bytes.Buffer) {
	var out bytes.Buffer
	workflow := usecase.NewStatsWorkflow(stubFetcher{}, nil)
	workflow.Seed(seed)
	return &session{workflow: workflow, out: &out}, &out
}

func TestSession_Run(t *testing.T) {
	s, out := newTestSession("alice, bob")
	input := strings.Join([]string{
		"add carol",
		"range 2024-01-01 2024-01-31",
		"add ghost",
		"add ALICE",
		"remove Bob",
		"list",
		"summary",
		"quit",
		"add never",
	}, "\n")

	require.NoError(t, s.run(context.Background(), strings.NewReader(input)))

	users := s.workflow.Users()
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Username)
	require.NotNil(t, users[0].Stats)
	assert.Equal(t, 5, users[0].Stats.Commits)
	// carol was added before the range existed and refreshed once it was set.
	assert.Equal(t, "carol", users[1].Username)
	require.NotNil(t, users[1].Stats)
	assert.Equal(t, 5, users[1].Stats.Commits)
	assert.Equal(t, domain.TrackedUser{Username: "ghost", Error: domain.MsgNotFound}, users[2])

	text := out.String()
	assert.Contains(t, text, domain.MsgMissingInput)
	assert.Contains(t, text, "ALICE is already tracked")
	assert.Contains(t, text, "Users: 3 (fetched 2, failed 1, unfetched 0)")
	assert.NotContains(t, text, "never")
}

func TestSession_Execute(t *testing.T) {
	testCases := []struct {
		name        string
		line        string
		expectQuit  bool
		expectError string
		expectOut   string
	}{
		{name: "blank line", line: "   "},
		{name: "quit", line: "exit", expectQuit: true},
		{name: "unknown command", line: "dance", expectError: `unknown command "dance"`},
		{name: "add without user", line: "add", expectError: "usage: add USER"},
		{name: "inverted range", line: "range 2024-02-01 2024-01-01", expectError: "is after"},
		{name: "bad date", line: "from tomorrow", expectError: "YYYY-MM-DD"},
		{name: "remove unknown", line: "remove zed", expectOut: "zed is not tracked"},
		{name: "help", line: "help", expectOut: "range FROM TO"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, out := newTestSession("alice")

			quit, err := s.execute(context.Background(), tc.line)

			assert.Equal(t, tc.expectQuit, quit)
			if tc.expectError != "" {
				assert.ErrorContains(t, err, tc.expectError)
			} else {
				assert.NoError(t, err)
			}
			if tc.expectOut != "" {
				assert.Contains(t, out.String(), tc.expectOut)
			}
		})
	}
}

func TestSession_SeparateDatesRefreshOnceComplete(t *testing.T) {
	s, _ := newTestSession("alice")
	ctx := context.Background()

	_, err := s.execute(ctx, "from 2024/01/01")
	require.NoError(t, err)
	assert.Equal(t, domain.StateUnfetched, s.workflow.Users()[0].State())

	_, err = s.execute(ctx, "to 2024/01/31")
	require.NoError(t, err)
	assert.Equal(t, domain.StateStats, s.workflow.Users()[0].State())
	assert.Equal(t, "2024-01-01..2024-01-31", s.workflow.Range().String())
}
