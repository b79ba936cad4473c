// Package digest orchestrates a report run: it fetches merged PRs,
// the review queue, and PR activity through the GitHub client,
// summarizes each merged PR with the configured provider, and
// assembles the markdown report.
package digest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/roboco-io/ghdigest/internal/llm"
	"github.com/roboco-io/ghdigest/internal/report"
)

// skippedSummaryText stands in for the LLM summary when
// summarization is disabled.
const skippedSummaryText = "Summary skipped."

// Fetcher is the slice of the GitHub client the generator uses.
type Fetcher interface {
	MergedPRs(ctx context.Context, repo string, since time.Time, usernames []string) ([]report.PullRequest, error)
	ReviewRequests(ctx context.Context, repo, username string) ([]report.PullRequest, error)
	ActivityOnAuthoredPRs(ctx context.Context, repo, username string, since time.Time) ([]report.Activity, error)
	PRDetails(ctx context.Context, repo string, number int) (*report.Details, error)
	User(ctx context.Context, login string) report.User
}

// Generator runs one digest over a set of repositories.
type Generator struct {
	Repos          []string
	Labels         []string
	Usernames      []string
	Window         time.Duration
	GitHubUsername string

	GitHub   Fetcher
	Provider llm.Provider // nil disables summarization
	Options  llm.SummarizeOptions

	Progress io.Writer // nil discards progress lines

	now func() time.Time
}

// Generate runs the digest and returns the markdown report. Fetch
// and summarization failures for individual PRs are reported as
// progress lines and skipped; only context cancellation aborts the
// run.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	end := g.timeNow().UTC()
	start := end.Add(-g.Window)

	g.progressf("Fetching PRs from %s to %s", start.Format(time.RFC3339), end.Format(time.RFC3339))

	reviewQueue, err := g.fetchReviewQueue(ctx)
	if err != nil {
		return "", err
	}
	activity, err := g.fetchActivity(ctx, start)
	if err != nil {
		return "", err
	}

	var merged []report.PullRequest
	for _, repo := range g.Repos {
		prs, err := g.GitHub.MergedPRs(ctx, repo, start, g.Usernames)
		if err != nil {
			return "", err
		}
		merged = append(merged, report.Filter(prs, g.Labels, g.Usernames)...)
	}

	var summaries []report.Summary
	if len(merged) > 0 {
		g.progressf("Found %d matching merged PRs", len(merged))
		for _, pr := range merged {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			g.progressf("Analyzing PR #%d in %s", pr.Number, pr.Repository)
			summary, err := g.summarize(ctx, pr)
			if err != nil {
				g.progressf("Skipping PR #%d: %v", pr.Number, err)
				continue
			}
			summaries = append(summaries, summary)
		}
	} else {
		g.progressf("No matching merged PRs found")
	}

	if failed := len(merged) - len(summaries); failed > 0 {
		g.progressf("Summary generation complete: %d successful, %d failed", len(summaries), failed)
	} else {
		g.progressf("Summary generation complete")
	}

	b := &report.Builder{Repos: g.Repos, Labels: g.Labels, Usernames: g.Usernames}
	return b.Build(summaries, reviewQueue, activity, start, end), nil
}

// fetchReviewQueue collects open PRs awaiting the configured user's
// review across all repos. Label and username filters do not apply
// here.
func (g *Generator) fetchReviewQueue(ctx context.Context) ([]report.PullRequest, error) {
	if g.GitHubUsername == "" {
		return nil, nil
	}
	g.progressf("Fetching PRs awaiting review for %s", g.GitHubUsername)

	var queue []report.PullRequest
	for _, repo := range g.Repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prs, err := g.GitHub.ReviewRequests(ctx, repo, g.GitHubUsername)
		if err != nil {
			g.progressf("Warning: %v", err)
			continue
		}
		queue = append(queue, prs...)
	}
	g.progressf("Found %d PRs awaiting review", len(queue))
	return queue, nil
}

// fetchActivity collects recent comments and reviews on the
// configured user's PRs across all repos, newest first.
func (g *Generator) fetchActivity(ctx context.Context, since time.Time) ([]report.Activity, error) {
	if g.GitHubUsername == "" {
		return nil, nil
	}
	g.progressf("Fetching activity on PRs authored by %s", g.GitHubUsername)

	var items []report.Activity
	for _, repo := range g.Repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		repoItems, err := g.GitHub.ActivityOnAuthoredPRs(ctx, repo, g.GitHubUsername, since)
		if err != nil {
			g.progressf("Warning: %v", err)
			continue
		}
		items = append(items, repoItems...)
	}

	// Each repo's slice arrives sorted; merge order across repos.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	g.progressf("Found %d activity items on your PRs", len(items))
	return items, nil
}

// summarize builds the summary record for one merged PR: detail
// fetch, participant resolution, then the provider call. A detail
// fetch failure skips the PR; a provider failure degrades to the
// fallback text.
func (g *Generator) summarize(ctx context.Context, pr report.PullRequest) (report.Summary, error) {
	details, err := g.GitHub.PRDetails(ctx, pr.Repository, pr.Number)
	if err != nil {
		return report.Summary{}, err
	}

	authorLogin := pr.Author.Login
	if authorLogin == "" {
		authorLogin = "unknown"
	}
	author := g.GitHub.User(ctx, authorLogin)

	var reviewers []report.User
	for _, review := range details.Reviews {
		login := review.Author.Login
		if review.State == "APPROVED" && login != "" && !report.IsKnownBot(login) {
			reviewers = append(reviewers, g.GitHub.User(ctx, login))
		}
	}

	seen := make(map[string]bool)
	var commenterLogins []string
	for _, comment := range details.Comments {
		login := comment.Author.Login
		if login == "" || report.IsBot(login) || login == authorLogin || seen[login] {
			continue
		}
		seen[login] = true
		commenterLogins = append(commenterLogins, login)
	}
	sort.Strings(commenterLogins)
	var commenters []report.User
	for _, login := range commenterLogins {
		commenters = append(commenters, g.GitHub.User(ctx, login))
	}

	files := make([]string, 0, len(details.Files))
	for _, f := range details.Files {
		files = append(files, f.Path)
	}

	text := skippedSummaryText
	if g.Provider != nil {
		result, err := g.Provider.Summarize(ctx, llm.SummaryRequest{
			Repository: pr.Repository,
			Title:      pr.Title,
			Body:       pr.Body,
			Files:      files,
		}, g.Options)
		if err != nil {
			g.progressf("Failed to generate summary for PR #%d: %v", pr.Number, err)
			text = llm.FallbackText
		} else {
			text = result.Text
		}
	}

	return report.Summary{
		PR:         pr,
		Author:     author,
		Reviewers:  reviewers,
		Commenters: commenters,
		Text:       text,
		Files:      files,
	}, nil
}

func (g *Generator) timeNow() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}

func (g *Generator) progressf(format string, args ...any) {
	if g.Progress == nil {
		return
	}
	fmt.Fprintf(g.Progress, format+"\n", args...)
}
