package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/slack-go/slack"
	"golang.org/x/oauth2"

	"github.com/tokenforge/sage/internal/config"
)

// ReviewItem is an admin review request produced by the learning loop.
type ReviewItem struct {
	Title       string
	Description string
	Priority    int
	DueDate     time.Time
}

// ReviewNotifier delivers admin review items somewhere a human will see
// them. Delivery failures are logged, never propagated: review items are
// best-effort side channels, not part of feedback ingestion.
type ReviewNotifier interface {
	Notify(ctx context.Context, item ReviewItem)
}

// Sink is the task sink collaborator: it stores system tasks and fans admin
// review items out to the configured notifiers.
type Sink struct {
	Store     *Store
	notifiers []ReviewNotifier
}

// NewSink builds a Sink with notifiers derived from config: Slack when a
// channel is set and SLACK_BOT_TOKEN is present, GitHub issues when a repo
// is set and GITHUB_TOKEN is present.
func NewSink(store *Store, cfg config.Sinks) *Sink {
	s := &Sink{Store: store}
	if cfg.SlackChannel != "" {
		if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
			s.notifiers = append(s.notifiers, &SlackNotifier{
				client:  slack.New(token),
				channel: cfg.SlackChannel,
			})
		}
	}
	if cfg.GitHubRepo != "" {
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			if owner, repo, ok := strings.Cut(cfg.GitHubRepo, "/"); ok {
				s.notifiers = append(s.notifiers, &GitHubNotifier{
					token: token,
					owner: owner,
					repo:  repo,
				})
			}
		}
	}
	return s
}

// CreateAdminReviewItem fans the item out to every notifier.
func (s *Sink) CreateAdminReviewItem(ctx context.Context, title, description string, priority int, dueDate time.Time) {
	item := ReviewItem{Title: title, Description: description, Priority: priority, DueDate: dueDate}
	for _, n := range s.notifiers {
		n.Notify(ctx, item)
	}
}

// SlackNotifier posts review items to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
}

// Notify posts the item; failures are logged and swallowed.
func (n *SlackNotifier) Notify(ctx context.Context, item ReviewItem) {
	text := fmt.Sprintf(":mag: *%s* (priority %d, due %s)\n%s",
		item.Title, item.Priority, item.DueDate.Format("2006-01-02"), item.Description)
	_, _, err := n.client.PostMessageContext(ctx, n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		slog.Warn("review sink: slack post failed", "channel", n.channel, "err", err)
	}
}

// GitHubNotifier opens review items as GitHub issues.
type GitHubNotifier struct {
	token string
	owner string
	repo  string
}

// Notify opens the issue; failures are logged and swallowed.
func (n *GitHubNotifier) Notify(ctx context.Context, item ReviewItem) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: n.token})
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	body := fmt.Sprintf("%s\n\nPriority: %d\nDue: %s", item.Description, item.Priority, item.DueDate.Format("2006-01-02"))
	labels := []string{"sage-review"}
	_, _, err := client.Issues.Create(ctx, n.owner, n.repo, &github.IssueRequest{
		Title:  &item.Title,
		Body:   &body,
		Labels: &labels,
	})
	if err != nil {
		slog.Warn("review sink: github issue creation failed", "repo", n.owner+"/"+n.repo, "err", err)
	}
}
