package digest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/roboco-io/ghdigest/internal/llm"
	"github.com/roboco-io/ghdigest/internal/report"
)

var testNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

// fakeFetcher serves canned GitHub data keyed by repo (and
// "repo#number" for details) and records the calls it saw.
type fakeFetcher struct {
	merged      map[string][]report.PullRequest
	reviewQueue map[string][]report.PullRequest
	activity    map[string][]report.Activity
	details     map[string]*report.Details
	users       map[string]report.User

	reviewErr map[string]error
	detailErr map[string]error

	mergedCalls   []string
	reviewCalls   []string
	activityCalls []string
	userCalls     []string
}

func (f *fakeFetcher) MergedPRs(ctx context.Context, repo string, since time.Time, usernames []string) ([]report.PullRequest, error) {
	f.mergedCalls = append(f.mergedCalls, repo)
	return f.merged[repo], nil
}

func (f *fakeFetcher) ReviewRequests(ctx context.Context, repo, username string) ([]report.PullRequest, error) {
	f.reviewCalls = append(f.reviewCalls, repo)
	if err := f.reviewErr[repo]; err != nil {
		return nil, err
	}
	return f.reviewQueue[repo], nil
}

func (f *fakeFetcher) ActivityOnAuthoredPRs(ctx context.Context, repo, username string, since time.Time) ([]report.Activity, error) {
	f.activityCalls = append(f.activityCalls, repo)
	return f.activity[repo], nil
}

func (f *fakeFetcher) PRDetails(ctx context.Context, repo string, number int) (*report.Details, error) {
	key := fmt.Sprintf("%s#%d", repo, number)
	if err := f.detailErr[key]; err != nil {
		return nil, err
	}
	if d, ok := f.details[key]; ok {
		return d, nil
	}
	return &report.Details{}, nil
}

func (f *fakeFetcher) User(ctx context.Context, login string) report.User {
	f.userCalls = append(f.userCalls, login)
	if u, ok := f.users[login]; ok {
		return u
	}
	return report.User{Login: login, Name: login}
}

// fakeSummarizer records requests and returns a fixed summary.
type fakeSummarizer struct {
	requests []llm.SummaryRequest
	text     string
	err      error
}

func (f *fakeSummarizer) Name() string    { return "fake" }
func (f *fakeSummarizer) Validate() error { return nil }

func (f *fakeSummarizer) Summarize(ctx context.Context, req llm.SummaryRequest, opts llm.SummarizeOptions) (*llm.SummaryResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.SummaryResult{Text: f.text, Model: "fake-model"}, nil
}

func mergedPR(repo string, number int, title, author string) report.PullRequest {
	return report.PullRequest{
		Number:     number,
		Title:      title,
		URL:        fmt.Sprintf("https://github.com/%s/pull/%d", repo, number),
		Author:     report.Author{Login: author},
		MergedAt:   "2026-08-24T15:00:00Z",
		CreatedAt:  "2026-08-23T10:00:00Z",
		Body:       "Speeds up fetches.",
		Repository: repo,
	}
}

func TestGenerator_FullRun(t *testing.T) {
	fetcher := &fakeFetcher{
		merged: map[string][]report.PullRequest{
			"octo/widgets": {mergedPR("octo/widgets", 5, "Add caching", "alice")},
		},
		reviewQueue: map[string][]report.PullRequest{
			"octo/widgets": {{
				Number:    9,
				Title:     "Fix flaky test",
				URL:       "https://github.com/octo/widgets/pull/9",
				Author:    report.Author{Login: "bob"},
				CreatedAt: "2026-08-25T08:00:00Z",
			}},
		},
		activity: map[string][]report.Activity{
			"octo/widgets": {{
				PRNumber:  3,
				PRTitle:   "Old refactor",
				PRURL:     "https://github.com/octo/widgets/pull/3",
				Kind:      report.ActivityComment,
				Author:    "frank",
				Body:      "Looks good",
				CreatedAt: "2026-08-25T09:00:00Z",
			}},
		},
		details: map[string]*report.Details{
			"octo/widgets#5": {
				Reviews: []report.Review{
					{Author: report.Author{Login: "bob"}, State: "APPROVED"},
					{Author: report.Author{Login: "dependabot"}, State: "APPROVED"},
					{Author: report.Author{Login: "helper[bot]"}, State: "APPROVED"},
					{Author: report.Author{Login: "carol"}, State: "COMMENTED"},
				},
				Comments: []report.Comment{
					{Author: report.Author{Login: "erin"}, Body: "nice"},
					{Author: report.Author{Login: "dave"}, Body: "lgtm"},
					{Author: report.Author{Login: "dave"}, Body: "really"},
					{Author: report.Author{Login: "alice"}, Body: "thanks"},
					{Author: report.Author{Login: "github-actions"}, Body: "ci passed"},
				},
				Files: []report.File{{Path: "internal/cache.go"}, {Path: "internal/cache_test.go"}},
			},
		},
		users: map[string]report.User{
			"alice": {Login: "alice", Name: "Alice Doe", URL: "https://github.com/alice"},
		},
	}
	provider := &fakeSummarizer{text: "Adds a small read-through cache."}
	var progress bytes.Buffer

	g := &Generator{
		Repos:          []string{"octo/widgets"},
		Window:         24 * time.Hour,
		GitHubUsername: "alice",
		GitHub:         fetcher,
		Provider:       provider,
		Progress:       &progress,
		now:            func() time.Time { return testNow },
	}

	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 summarize call, got %d", len(provider.requests))
	}
	req := provider.requests[0]
	if req.Repository != "octo/widgets" || req.Title != "Add caching" {
		t.Errorf("unexpected summarize request: %+v", req)
	}
	if len(req.Files) != 2 || req.Files[0] != "internal/cache.go" {
		t.Errorf("unexpected files in request: %v", req.Files)
	}

	// Author first, then approving reviewers in review order, then
	// commenters deduped and sorted.
	wantUsers := []string{"alice", "bob", "helper[bot]", "dave", "erin"}
	if len(fetcher.userCalls) != len(wantUsers) {
		t.Fatalf("expected user lookups %v, got %v", wantUsers, fetcher.userCalls)
	}
	for i, want := range wantUsers {
		if fetcher.userCalls[i] != want {
			t.Errorf("user lookup %d: expected %s, got %s", i, want, fetcher.userCalls[i])
		}
	}

	for _, want := range []string{
		"## PRs Awaiting Your Review (1)",
		"- [PR #9: Fix flaky test](https://github.com/octo/widgets/pull/9) by **bob**",
		"## Recent Activity on Your PRs (1)",
		"## Merged PRs (1 total)",
		"## [PR #5: Add caching](https://github.com/octo/widgets/pull/5)",
		"**Author:** [Alice Doe](https://github.com/alice)",
		"**Reviewers:** bob, helper[bot]",
		"**Commenters:** dave, erin",
		"Adds a small read-through cache.",
		"- [`internal/cache.go`](https://github.com/octo/widgets/blob/main/internal/cache.go)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	if strings.Contains(out, "dependabot") {
		t.Error("known bot should not appear as a reviewer")
	}
	if !strings.Contains(progress.String(), "Found 1 matching merged PRs") {
		t.Errorf("expected progress line, got:\n%s", progress.String())
	}
}

func TestGenerator_NoProvider(t *testing.T) {
	fetcher := &fakeFetcher{
		merged: map[string][]report.PullRequest{
			"octo/widgets": {mergedPR("octo/widgets", 5, "Add caching", "alice")},
		},
	}

	g := &Generator{
		Repos:  []string{"octo/widgets"},
		Window: 24 * time.Hour,
		GitHub: fetcher,
		now:    func() time.Time { return testNow },
	}

	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "Summary skipped.") {
		t.Error("expected skip placeholder when no provider is configured")
	}
}

func TestGenerator_ProviderErrorFallsBack(t *testing.T) {
	fetcher := &fakeFetcher{
		merged: map[string][]report.PullRequest{
			"octo/widgets": {mergedPR("octo/widgets", 5, "Add caching", "alice")},
		},
	}
	provider := &fakeSummarizer{err: errors.New("rate limited")}
	var progress bytes.Buffer

	g := &Generator{
		Repos:    []string{"octo/widgets"},
		Window:   24 * time.Hour,
		GitHub:   fetcher,
		Provider: provider,
		Progress: &progress,
		now:      func() time.Time { return testNow },
	}

	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, llm.FallbackText) {
		t.Error("expected fallback text for failed summary")
	}
	if !strings.Contains(out, "## [PR #5: Add caching]") {
		t.Error("PR section should survive a provider failure")
	}
	if !strings.Contains(progress.String(), "Failed to generate summary for PR #5") {
		t.Errorf("expected failure progress line, got:\n%s", progress.String())
	}
}

func TestGenerator_DetailFetchFailureSkipsPR(t *testing.T) {
	fetcher := &fakeFetcher{
		merged: map[string][]report.PullRequest{
			"octo/widgets": {
				mergedPR("octo/widgets", 5, "Add caching", "alice"),
				mergedPR("octo/widgets", 6, "Drop dead code", "bob"),
			},
		},
		detailErr: map[string]error{
			"octo/widgets#5": errors.New("boom"),
		},
	}
	provider := &fakeSummarizer{text: "Removes unused helpers."}
	var progress bytes.Buffer

	g := &Generator{
		Repos:    []string{"octo/widgets"},
		Window:   24 * time.Hour,
		GitHub:   fetcher,
		Provider: provider,
		Progress: &progress,
		now:      func() time.Time { return testNow },
	}

	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(out, "Add caching") {
		t.Error("PR with failed detail fetch should be skipped")
	}
	if !strings.Contains(out, "## [PR #6: Drop dead code]") {
		t.Error("remaining PR should still be reported")
	}
	if !strings.Contains(out, "## Merged PRs (1 total)") {
		t.Error("merged count should reflect only summarized PRs")
	}
	if !strings.Contains(progress.String(), "Skipping PR #5") {
		t.Errorf("expected skip progress line, got:\n%s", progress.String())
	}
	if !strings.Contains(progress.String(), "1 successful, 1 failed") {
		t.Errorf("expected completion tally, got:\n%s", progress.String())
	}
}

func TestGenerator_EmptyRun(t *testing.T) {
	g := &Generator{
		Repos:          []string{"octo/widgets"},
		Window:         24 * time.Hour,
		GitHubUsername: "alice",
		GitHub:         &fakeFetcher{},
		now:            func() time.Time { return testNow },
	}

	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "**Total PRs:** 0") {
		t.Error("expected empty report form")
	}
}

func TestGenerator_ActivityMergedAcrossRepos(t *testing.T) {
	item := func(repo string, n int, createdAt string) report.Activity {
		return report.Activity{
			PRNumber:   n,
			PRTitle:    fmt.Sprintf("PR %d", n),
			PRURL:      fmt.Sprintf("https://github.com/%s/pull/%d", repo, n),
			Repository: repo,
			Kind:       report.ActivityComment,
			Author:     "frank",
			Body:       "note",
			CreatedAt:  createdAt,
		}
	}
	fetcher := &fakeFetcher{
		activity: map[string][]report.Activity{
			"octo/widgets": {
				item("octo/widgets", 1, "2026-08-25T10:00:00Z"),
				item("octo/widgets", 2, "2026-08-25T06:00:00Z"),
			},
			"octo/gears": {
				item("octo/gears", 3, "2026-08-25T08:00:00Z"),
			},
		},
	}

	g := &Generator{
		Repos:          []string{"octo/widgets", "octo/gears"},
		Window:         24 * time.Hour,
		GitHubUsername: "alice",
		GitHub:         fetcher,
		now:            func() time.Time { return testNow },
	}

	items, err := g.fetchActivity(context.Background(), testNow.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].PRNumber != 1 || items[1].PRNumber != 3 || items[2].PRNumber != 2 {
		t.Errorf("expected newest-first across repos, got %d, %d, %d",
			items[0].PRNumber, items[1].PRNumber, items[2].PRNumber)
	}
}

func TestGenerator_NoGitHubUsername(t *testing.T) {
	fetcher := &fakeFetcher{}

	g := &Generator{
		Repos:  []string{"octo/widgets"},
		Window: 24 * time.Hour,
		GitHub: fetcher,
		now:    func() time.Time { return testNow },
	}

	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fetcher.reviewCalls) != 0 {
		t.Errorf("expected no review queue calls, got %v", fetcher.reviewCalls)
	}
	if len(fetcher.activityCalls) != 0 {
		t.Errorf("expected no activity calls, got %v", fetcher.activityCalls)
	}
}

func TestGenerator_ReviewQueueFailureSkipsRepo(t *testing.T) {
	fetcher := &fakeFetcher{
		reviewQueue: map[string][]report.PullRequest{
			"octo/gears": {{
				Number: 7,
				Title:  "Tighten gears",
				URL:    "https://github.com/octo/gears/pull/7",
				Author: report.Author{Login: "bob"},
			}},
		},
		reviewErr: map[string]error{
			"octo/widgets": errors.New("boom"),
		},
	}
	var progress bytes.Buffer

	g := &Generator{
		Repos:          []string{"octo/widgets", "octo/gears"},
		Window:         24 * time.Hour,
		GitHubUsername: "alice",
		GitHub:         fetcher,
		Progress:       &progress,
		now:            func() time.Time { return testNow },
	}

	out, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "PR #7: Tighten gears") {
		t.Error("expected surviving repo's review queue in report")
	}
	if !strings.Contains(progress.String(), "Warning:") {
		t.Errorf("expected warning progress line, got:\n%s", progress.String())
	}
}
