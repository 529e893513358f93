package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dcabot/internal/api"
)

const githubAPI = "https://api.github.com"

// GitHub opens one issue per message in a repository.
type GitHub struct {
	client *api.Client
	repo   string
	labels []string
}

type githubIssue struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// NewGitHub creates a notifier for repo ("owner/name"). baseURL may be empty.
func NewGitHub(baseURL, repo, token string, labels []string) (*GitHub, error) {
	if strings.Count(repo, "/") != 1 {
		return nil, fmt.Errorf("github repo must be owner/name, got %q", repo)
	}
	if token == "" {
		return nil, errors.New("github token is empty")
	}
	if baseURL == "" {
		baseURL = githubAPI
	}
	return &GitHub{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(15*time.Second),
			api.WithHeader("Accept", "application/vnd.github+json"),
			api.WithHeader("Authorization", "Bearer "+token),
			api.WithHeader("X-GitHub-Api-Version", "2022-11-28"),
			api.WithHeader("User-Agent", "dcabot"),
		),
		repo:   repo,
		labels: labels,
	}, nil
}

func (g *GitHub) Publish(ctx context.Context, title, body string) error {
	_, err := g.client.POST(ctx, "/repos/"+g.repo+"/issues", githubIssue{
		Title:  title,
		Body:   body,
		Labels: g.labels,
	})
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}
