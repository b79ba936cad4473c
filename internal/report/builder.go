package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// labelDisplayCap bounds the Labels line of a PR section.
	labelDisplayCap = 6
	// fileDisplayCap bounds the Changed Files list of a PR section.
	fileDisplayCap = 15
	// activityBodyDisplayCap bounds quoted bodies in the activity section.
	activityBodyDisplayCap = 150
)

// Builder assembles collected records into the markdown report.
type Builder struct {
	Repos     []string
	Labels    []string
	Usernames []string
}

// Build renders the full report. When nothing at all was collected it
// produces the short empty-report form instead.
func (b *Builder) Build(summaries []Summary, reviewQueue []PullRequest, activity []Activity, start, end time.Time) string {
	if len(summaries) == 0 && len(reviewQueue) == 0 && len(activity) == 0 {
		return b.buildEmpty(start, end)
	}

	var sb strings.Builder
	sb.WriteString("# GitHub Summary\n\n")
	sb.WriteString(fmt.Sprintf("**Report Period:** %s to %s\n\n", stamp(start), stamp(end)))
	sb.WriteString(b.repositoriesLine() + "\n\n")

	if len(reviewQueue) > 0 {
		writeReviewQueue(&sb, reviewQueue)
		sb.WriteString("\n---\n\n")
	}
	if len(activity) > 0 {
		writeActivity(&sb, activity)
		sb.WriteString("\n---\n\n")
	}
	if len(summaries) > 0 {
		sb.WriteString(fmt.Sprintf("## Merged PRs (%d total)\n\n", len(summaries)))
		sb.WriteString(fmt.Sprintf("**Filters:** Labels: %s | Usernames: %s\n\n---\n", b.labelsText(), b.usernamesText()))
		for _, s := range summaries {
			writePRSection(&sb, s)
			sb.WriteString("\n---\n\n")
		}
		writeStatistics(&sb, summaries)
	}
	return sb.String()
}

func (b *Builder) buildEmpty(start, end time.Time) string {
	var sb strings.Builder
	sb.WriteString("# GitHub Summary\n\n")
	sb.WriteString("**Total PRs:** 0\n\n")
	sb.WriteString(fmt.Sprintf("**Report Period:** %s to %s\n\n", stamp(start), stamp(end)))
	sb.WriteString(b.repositoriesLine() + "\n\n")
	sb.WriteString(fmt.Sprintf("**Filters:** Labels: %s | Usernames: %s\n\n", b.labelsText(), b.usernamesText()))
	sb.WriteString("---\n\n")
	sb.WriteString("No merged pull requests found matching the specified criteria.\n")
	return sb.String()
}

func writeReviewQueue(sb *strings.Builder, prs []PullRequest) {
	sb.WriteString(fmt.Sprintf("## PRs Awaiting Your Review (%d)\n\n", len(prs)))
	for _, pr := range prs {
		login := pr.Author.Login
		if login == "" {
			login = "unknown"
		}
		sb.WriteString(fmt.Sprintf("- [PR #%d: %s](%s) by **%s** (%s)\n", pr.Number, pr.Title, pr.URL, login, datePart(pr.CreatedAt)))
	}
}

func writeActivity(sb *strings.Builder, items []Activity) {
	sb.WriteString(fmt.Sprintf("## Recent Activity on Your PRs (%d)\n\n", len(items)))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- **%s** on [PR #%d: %s](%s)\n", activityIndicator(item), item.PRNumber, item.PRTitle, item.PRURL))
		sb.WriteString(fmt.Sprintf("  - By **%s** at %s %s UTC\n", item.Author, datePart(item.CreatedAt), timePart(item.CreatedAt)))

		body := item.Body
		if len(body) > activityBodyDisplayCap {
			body = Truncate(body, activityBodyDisplayCap) + "..."
		}
		if body != "" && body != fmt.Sprintf("[%s]", item.State) {
			oneline := strings.ReplaceAll(strings.ReplaceAll(body, "\n", " "), "\r", "")
			sb.WriteString(fmt.Sprintf("  - \"%s\"\n", oneline))
		}
		sb.WriteString("\n")
	}
}

func activityIndicator(item Activity) string {
	if item.Kind == ActivityReview && item.State != "" {
		switch item.State {
		case "APPROVED":
			return "✅ Approved"
		case "CHANGES_REQUESTED":
			return "🔄 Changes Requested"
		default:
			return fmt.Sprintf("📝 Review (%s)", item.State)
		}
	}
	return "💬 Comment"
}

func writePRSection(sb *strings.Builder, s Summary) {
	authorLink := s.Author.Link()

	components, labels := splitLabels(s.PR.Labels)

	sb.WriteString(fmt.Sprintf("## [PR #%d: %s](%s)\n\n", s.PR.Number, s.PR.Title, s.PR.URL))
	sb.WriteString(fmt.Sprintf("**Issue Opened On:** %s %s UTC by %s\n\n", datePart(s.PR.CreatedAt), timePart(s.PR.CreatedAt), authorLink))
	sb.WriteString(fmt.Sprintf("**Merged:** %s %s UTC\n\n", datePart(s.PR.MergedAt), timePart(s.PR.MergedAt)))
	sb.WriteString(fmt.Sprintf("**Author:** %s\n\n", authorLink))

	if len(components) > 0 {
		sb.WriteString(fmt.Sprintf("**Components:** %s\n\n", strings.Join(components, ", ")))
	}
	if len(labels) > 0 {
		shown := labels
		if len(labels) > labelDisplayCap {
			shown = labels[:labelDisplayCap]
		}
		text := strings.Join(shown, ", ")
		if rest := len(labels) - labelDisplayCap; rest > 0 {
			text += fmt.Sprintf(", and %d more", rest)
		}
		sb.WriteString(fmt.Sprintf("**Labels:** %s\n\n", text))
	}

	sb.WriteString(fmt.Sprintf("**Reviewers:** %s\n\n", userList(s.Reviewers)))
	sb.WriteString(fmt.Sprintf("**Commenters:** %s\n\n", userList(s.Commenters)))
	sb.WriteString(s.Text + "\n\n")
	sb.WriteString("### Changed Files\n\n")

	shown := s.Files
	if len(s.Files) > fileDisplayCap {
		shown = s.Files[:fileDisplayCap]
	}
	for _, path := range shown {
		sb.WriteString(fmt.Sprintf("- [`%s`](https://github.com/%s/blob/main/%s)\n", path, s.PR.Repository, path))
	}
	if rest := len(s.Files) - fileDisplayCap; rest > 0 {
		sb.WriteString(fmt.Sprintf("- ... and %d more files\n", rest))
	}
}

// splitLabels drops the noise labels and separates //area components
// from the rest. Components also stay in the general label list.
func splitLabels(labels []Label) (components, kept []string) {
	for _, label := range labels {
		if strings.HasPrefix(label.Name, "ZoneID:") || label.Name == "has-min-approvals" {
			continue
		}
		kept = append(kept, label.Name)
		if strings.HasPrefix(label.Name, "//area") {
			components = append(components, label.Name)
		}
	}
	return components, kept
}

func writeStatistics(sb *strings.Builder, summaries []Summary) {
	authors := make(map[string]bool)
	files := 0
	for _, s := range summaries {
		authors[s.Author.Login] = true
		files += len(s.Files)
	}

	sb.WriteString("## Summary Statistics\n\n")
	sb.WriteString(fmt.Sprintf("- **Total Merged PRs:** %d\n", len(summaries)))
	sb.WriteString(fmt.Sprintf("- **Authors:** %d unique contributors\n", len(authors)))
	sb.WriteString(fmt.Sprintf("- **Files Changed:** %d files across all PRs\n", files))
}

func (b *Builder) repositoriesLine() string {
	links := make([]string, len(b.Repos))
	for i, repo := range b.Repos {
		links[i] = fmt.Sprintf("[%s](https://github.com/%s)", repo, repo)
	}
	return "**Repositories:** " + strings.Join(links, ", ")
}

func (b *Builder) labelsText() string {
	if len(b.Labels) == 0 {
		return "None"
	}
	return strings.Join(b.Labels, ", ")
}

func (b *Builder) usernamesText() string {
	if len(b.Usernames) == 0 {
		return "None"
	}
	return strings.Join(b.Usernames, ", ")
}

func userList(users []User) string {
	if len(users) == 0 {
		return "None"
	}
	links := make([]string, len(users))
	for i, u := range users {
		links[i] = u.Link()
	}
	return strings.Join(links, ", ")
}

func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04") + " UTC"
}

// datePart slices the date out of an RFC 3339 timestamp.
func datePart(ts string) string {
	if ts == "" {
		return "Unknown"
	}
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}

// timePart slices the clock time out of an RFC 3339 timestamp.
func timePart(ts string) string {
	if len(ts) > 16 {
		return ts[11:16]
	}
	return ""
}

// Truncate shortens s to at most n bytes without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
