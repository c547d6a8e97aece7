package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/contrib-tracker/internal/config"
	"github.com/naka-gawa/contrib-tracker/internal/domain"
	"github.com/naka-gawa/contrib-tracker/internal/report"
)

// newGraphQLServer answers contribution queries: alice and carol exist, everyone else is null.
func newGraphQLServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables struct {
				Login string `json:"login"`
				From  string `json:"from"`
				To    string `json:"to"`
			} `json:"variables"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "2024-01-01T00:00:00Z", req.Variables.From)
		assert.Equal(t, "2024-01-31T23:59:59Z", req.Variables.To)

		switch req.Variables.Login {
		case "alice":
			fmt.Fprint(w, `{"data":{"user":{"login":"alice","contributionsCollection":{"totalCommitContributions":5,"totalIssueContributions":1,"totalPullRequestContributions":2,"totalPullRequestReviewContributions":3,"totalRepositoryContributions":1}}}}`)
		case "carol":
			fmt.Fprint(w, `{"data":{"user":{"login":"carol","contributionsCollection":{"totalCommitContributions":1,"totalIssueContributions":0,"totalPullRequestContributions":0,"totalPullRequestReviewContributions":0,"totalRepositoryContributions":0}}}}`)
		default:
			fmt.Fprint(w, `{"data":{"user":null}}`)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestStatsCommand(t *testing.T) {
	server := newGraphQLServer(t)
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvUsers, "alice, bob")
	t.Setenv(config.EnvGraphQLURL, server.URL)
	t.Setenv(config.EnvRequestTimeout, "5s")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"stats", "--from", "2024-01-01", "--to", "2024-01-31", "-u", "carol,ALICE", "--summary"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var got struct {
		Users []struct {
			Username string          `json:"username"`
			Stats    json.RawMessage `json:"stats"`
			Error    string          `json:"error"`
		} `json:"users"`
		Summary struct {
			Fetched int `json:"fetched"`
			Failed  int `json:"failed"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))

	require.Len(t, got.Users, 3)
	assert.Equal(t, "alice", got.Users[0].Username)
	assert.JSONEq(t, `{"commits":5,"issues":1,"pull_requests":2,"pull_request_reviews":3,"repositories":1}`, string(got.Users[0].Stats))
	assert.Equal(t, "bob", got.Users[1].Username)
	assert.Equal(t, "User not found or API error.", got.Users[1].Error)
	assert.Nil(t, got.Users[1].Stats)
	assert.Equal(t, "carol", got.Users[2].Username)
	assert.Equal(t, 2, got.Summary.Fetched)
	assert.Equal(t, 1, got.Summary.Failed)
}

func TestStatsCommand_InvertedRange(t *testing.T) {
	t.Setenv(config.EnvUsers, "alice")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"stats", "--from", "2024-02-01", "--to", "2024-01-01"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())

	assert.ErrorContains(t, err, "is after")
}

func TestStatsCommand_EmptyDate(t *testing.T) {
	t.Setenv(config.EnvUsers, "alice")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"stats", "--from", "", "--to", "2024-01-31"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())

	assert.EqualError(t, err, "--from and --to must not be empty")
}

func TestStatsCommand_OutputFile(t *testing.T) {
	server := newGraphQLServer(t)
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvUsers, "")
	t.Setenv(config.EnvGraphQLURL, server.URL)
	path := filepath.Join(t.TempDir(), "report.json")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"stats", "--from", "2024-01-01", "--to", "2024-01-31", "-u", "alice", "--output", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		require.NoError(t, statsCmd.Flags().Set("output", ""))
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Empty(t, out.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got struct {
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	// Slice flags accumulate across executions of the shared root command.
	var names []string
	for _, u := range got.Users {
		names = append(names, u.Username)
	}
	assert.Contains(t, names, "alice")
}

func TestWriteReport(t *testing.T) {
	rep := report.Report{Users: []domain.TrackedUser{{Username: "alice"}}}

	t.Run("stdout", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, writeReport(&out, "", report.FormatJSON, rep))
		assert.Contains(t, out.String(), `"alice"`)
	})

	t.Run("file", func(t *testing.T) {
		var out bytes.Buffer
		path := filepath.Join(t.TempDir(), "report.txt")

		require.NoError(t, writeReport(&out, path, report.FormatText, rep))

		assert.Empty(t, out.String())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "alice")
	})

	t.Run("write error still closes the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.out")

		err := writeReport(&bytes.Buffer{}, path, report.Format("yaml"), rep)

		assert.ErrorContains(t, err, "failed to write report")
		require.NoError(t, os.Remove(path))
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "report.json")

		err := writeReport(&bytes.Buffer{}, path, report.FormatJSON, rep)

		assert.ErrorContains(t, err, "failed to create output file")
	})
}
