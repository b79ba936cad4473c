// Package report defines the records a digest run collects and
// assembles them into the markdown report the renderer and delivery
// sinks consume.
package report

import "fmt"

// PullRequest is one pull request as decoded from gh pr list output.
// Timestamps stay in their RFC 3339 wire form; the report only ever
// slices and compares them as strings.
type PullRequest struct {
	Number     int     `json:"number"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Author     Author  `json:"author"`
	Labels     []Label `json:"labels"`
	MergedAt   string  `json:"mergedAt"`
	CreatedAt  string  `json:"createdAt"`
	Body       string  `json:"body"`
	Repository string  `json:"-"`
}

// Author is the author object nested in gh output.
type Author struct {
	Login string `json:"login"`
}

// Label is one label object nested in gh output.
type Label struct {
	Name string `json:"name"`
}

// Details is the full record returned by gh pr view.
type Details struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Author   Author    `json:"author"`
	URL      string    `json:"url"`
	Reviews  []Review  `json:"reviews"`
	Comments []Comment `json:"comments"`
	Files    []File    `json:"files"`
}

// Review is one review on a pull request.
type Review struct {
	Author      Author `json:"author"`
	State       string `json:"state"`
	Body        string `json:"body"`
	SubmittedAt string `json:"submittedAt"`
}

// Comment is one issue comment on a pull request.
type Comment struct {
	Author    Author `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// File is one changed file on a pull request.
type File struct {
	Path string `json:"path"`
}

// User is a resolved GitHub identity. Name falls back to the login
// and URL may be empty for bots.
type User struct {
	Login string
	Name  string
	URL   string
}

// Link renders the user as a markdown link, or the bare display name
// when no profile URL is known.
func (u User) Link() string {
	name := u.Name
	if name == "" {
		name = u.Login
	}
	if u.URL == "" {
		return name
	}
	return fmt.Sprintf("[%s](%s)", name, u.URL)
}

// Activity kinds.
const (
	ActivityComment = "comment"
	ActivityReview  = "review"
)

// Activity is one recent comment or review on a pull request the
// configured user authored.
type Activity struct {
	PRNumber   int
	PRTitle    string
	PRURL      string
	Repository string
	Kind       string
	Author     string
	Body       string
	CreatedAt  string
	State      string
}

// Summary is the digest record built for one merged pull request.
type Summary struct {
	PR         PullRequest
	Author     User
	Reviewers  []User
	Commenters []User
	Text       string
	Files      []string
}
