package github

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/roboco-io/ghdigest/internal/report"
)

const (
	prListFields   = "number,title,url,author,labels,mergedAt,createdAt,body"
	reviewFields   = "number,title,url,author,labels,createdAt,updatedAt"
	activityFields = "number,title,url,comments,reviews"
	detailFields   = "title,body,author,url,reviews,comments,files"

	// fetchBodyCap bounds comment and review bodies kept for the
	// activity section.
	fetchBodyCap = 300
)

// MergedPRs returns the PRs merged in repo since the given time, each
// stamped with the repository. With usernames it queries per author;
// otherwise it walks the window day by day, which keeps high-volume
// repos under gh's search result limits. Failed queries are logged
// and skipped.
func (c *Client) MergedPRs(ctx context.Context, repo string, since time.Time, usernames []string) ([]report.PullRequest, error) {
	sinceStr := since.UTC().Format("2006-01-02T15:04:05Z")
	if len(usernames) > 0 {
		return c.mergedByAuthor(ctx, repo, sinceStr, usernames)
	}
	return c.mergedByDay(ctx, repo, since, sinceStr)
}

func (c *Client) mergedByAuthor(ctx context.Context, repo, sinceStr string, usernames []string) ([]report.PullRequest, error) {
	var all []report.PullRequest
	for _, username := range usernames {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		out, err := c.output(ctx, "pr", "list",
			"--repo", repo,
			"--state", "merged",
			"--author", username,
			"--json", prListFields,
			"--limit", "100")
		if err != nil {
			c.logf("failed to fetch merged PRs from %s for %s: %v", repo, username, err)
			continue
		}
		var prs []report.PullRequest
		if err := json.Unmarshal(out, &prs); err != nil {
			c.logf("failed to parse PR data from %s for %s: %v", repo, username, err)
			continue
		}
		all = append(all, keepMergedSince(prs, repo, sinceStr)...)
	}
	return all, nil
}

func (c *Client) mergedByDay(ctx context.Context, repo string, since time.Time, sinceStr string) ([]report.PullRequest, error) {
	var all []report.PullRequest
	endDay := c.now().UTC().Truncate(24 * time.Hour)
	for day := since.UTC().Truncate(24 * time.Hour); !day.After(endDay); day = day.Add(24 * time.Hour) {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		date := day.Format("2006-01-02")
		out, err := c.output(ctx, "pr", "list",
			"--repo", repo,
			"--state", "merged",
			"--search", "merged:"+date,
			"--json", prListFields,
			"--limit", "2000")
		if err != nil {
			c.logf("failed to fetch merged PRs from %s for %s: %v", repo, date, err)
			continue
		}
		var prs []report.PullRequest
		if err := json.Unmarshal(out, &prs); err != nil {
			c.logf("failed to parse PR data from %s for %s: %v", repo, date, err)
			continue
		}
		all = append(all, keepMergedSince(prs, repo, sinceStr)...)
	}
	return all, nil
}

// keepMergedSince stamps the repository and keeps the PRs merged at
// or after sinceStr. RFC 3339 timestamps order lexically, so a string
// comparison is enough.
func keepMergedSince(prs []report.PullRequest, repo, sinceStr string) []report.PullRequest {
	var kept []report.PullRequest
	for _, pr := range prs {
		if pr.MergedAt != "" && pr.MergedAt >= sinceStr {
			pr.Repository = repo
			kept = append(kept, pr)
		}
	}
	return kept
}

// ReviewRequests returns the open PRs in repo waiting on username's
// review.
func (c *Client) ReviewRequests(ctx context.Context, repo, username string) ([]report.PullRequest, error) {
	out, err := c.output(ctx, "pr", "list",
		"--repo", repo,
		"--state", "open",
		"--search", "user-review-requested:"+username,
		"--json", reviewFields,
		"--limit", "100")
	if err != nil {
		return nil, fmt.Errorf("fetch review requests from %s: %w", repo, err)
	}
	var prs []report.PullRequest
	if err := json.Unmarshal(out, &prs); err != nil {
		return nil, fmt.Errorf("parse review requests from %s: %w", repo, err)
	}
	for i := range prs {
		prs[i].Repository = repo
	}
	return prs, nil
}

// authoredPR is the slim record the activity query asks gh for.
type authoredPR struct {
	Number   int              `json:"number"`
	Title    string           `json:"title"`
	URL      string           `json:"url"`
	Comments []report.Comment `json:"comments"`
	Reviews  []report.Review  `json:"reviews"`
}

// ActivityOnAuthoredPRs returns recent comments and reviews that
// other people left on PRs username authored in repo, newest first.
// Bot and self entries are dropped. Reviews without a body only count
// when they approved or requested changes.
func (c *Client) ActivityOnAuthoredPRs(ctx context.Context, repo, username string, since time.Time) ([]report.Activity, error) {
	sinceStr := since.UTC().Format("2006-01-02T15:04:05Z")
	var items []report.Activity

	for _, state := range []string{"open", "merged"} {
		if err := ctx.Err(); err != nil {
			return items, err
		}
		out, err := c.output(ctx, "pr", "list",
			"--repo", repo,
			"--state", state,
			"--author", username,
			"--json", activityFields,
			"--limit", "50")
		if err != nil {
			c.logf("failed to fetch activity from %s: %v", repo, err)
			continue
		}
		var prs []authoredPR
		if err := json.Unmarshal(out, &prs); err != nil {
			c.logf("failed to parse activity data from %s: %v", repo, err)
			continue
		}
		for _, pr := range prs {
			items = append(items, collectComments(pr, repo, username, sinceStr)...)
			items = append(items, collectReviews(pr, repo, username, sinceStr)...)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

func collectComments(pr authoredPR, repo, username, sinceStr string) []report.Activity {
	var items []report.Activity
	for _, comment := range pr.Comments {
		if comment.CreatedAt < sinceStr {
			continue
		}
		login := loginOrUnknown(comment.Author)
		if report.IsBot(login) || login == username {
			continue
		}
		items = append(items, report.Activity{
			PRNumber:   pr.Number,
			PRTitle:    pr.Title,
			PRURL:      pr.URL,
			Repository: repo,
			Kind:       report.ActivityComment,
			Author:     login,
			Body:       report.Truncate(comment.Body, fetchBodyCap),
			CreatedAt:  comment.CreatedAt,
		})
	}
	return items
}

func collectReviews(pr authoredPR, repo, username, sinceStr string) []report.Activity {
	var items []report.Activity
	for _, review := range pr.Reviews {
		if review.SubmittedAt < sinceStr {
			continue
		}
		login := loginOrUnknown(review.Author)
		if report.IsBot(login) || login == username {
			continue
		}
		body := review.Body
		if body == "" {
			if review.State != "APPROVED" && review.State != "CHANGES_REQUESTED" {
				continue
			}
			body = "[" + review.State + "]"
		} else {
			body = report.Truncate(body, fetchBodyCap)
		}
		items = append(items, report.Activity{
			PRNumber:   pr.Number,
			PRTitle:    pr.Title,
			PRURL:      pr.URL,
			Repository: repo,
			Kind:       report.ActivityReview,
			Author:     login,
			Body:       body,
			CreatedAt:  review.SubmittedAt,
			State:      review.State,
		})
	}
	return items
}

func loginOrUnknown(a report.Author) string {
	if a.Login == "" {
		return "unknown"
	}
	return a.Login
}

// PRDetails returns the full detail record for one PR.
func (c *Client) PRDetails(ctx context.Context, repo string, number int) (*report.Details, error) {
	out, err := c.output(ctx, "pr", "view", strconv.Itoa(number),
		"--repo", repo,
		"--json", detailFields)
	if err != nil {
		return nil, fmt.Errorf("fetch details for %s#%d: %w", repo, number, err)
	}
	var details report.Details
	if err := json.Unmarshal(out, &details); err != nil {
		return nil, fmt.Errorf("parse details for %s#%d: %w", repo, number, err)
	}
	return &details, nil
}

// User resolves a login to a display identity. Known bots
// short-circuit without a lookup, and lookup failures degrade to a
// login-only identity rather than failing the run.
func (c *Client) User(ctx context.Context, login string) report.User {
	if login == "" || report.IsKnownBot(login) {
		return report.User{Login: login, Name: login}
	}

	out, err := c.output(ctx, "api", "users/"+login, "--jq", ".name,.login,.html_url")
	if err != nil {
		c.logf("failed to fetch user info for %s: %v", login, err)
		return report.User{Login: login, Name: login, URL: "https://github.com/" + login}
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	u := report.User{Login: login, URL: "https://github.com/" + login}
	if len(lines) > 1 && lines[1] != "" {
		u.Login = lines[1]
	}
	if len(lines) > 0 && lines[0] != "null" {
		u.Name = lines[0]
	}
	if u.Name == "" {
		u.Name = u.Login
	}
	if len(lines) > 2 {
		u.URL = lines[2]
	}
	return u
}
