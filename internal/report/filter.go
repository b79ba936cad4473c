package report

// Filter keeps the pull requests matching the configured labels or
// usernames. A PR passes when any configured label equals one of its
// label names, or its author login is one of the configured
// usernames. With neither configured everything passes.
func Filter(prs []PullRequest, labels, usernames []string) []PullRequest {
	if len(labels) == 0 && len(usernames) == 0 {
		return prs
	}

	var kept []PullRequest
	for _, pr := range prs {
		if matchesLabel(pr, labels) || matchesUsername(pr, usernames) {
			kept = append(kept, pr)
		}
	}
	return kept
}

func matchesLabel(pr PullRequest, labels []string) bool {
	for _, want := range labels {
		for _, have := range pr.Labels {
			if want == have.Name {
				return true
			}
		}
	}
	return false
}

func matchesUsername(pr PullRequest, usernames []string) bool {
	for _, u := range usernames {
		if pr.Author.Login == u {
			return true
		}
	}
	return false
}
