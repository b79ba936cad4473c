package llm

import (
	"fmt"
	"strings"
)

// promptFileCap bounds the file list embedded in the prompt.
const promptFileCap = 20

const smallPRInstructions = `Write a concise 2-3 sentence summary that covers:
- What changed and why
- Any notable impact or considerations`

const mediumPRInstructions = `Write a single paragraph (4-5 sentences) covering:
- What problem was being solved or feature was needed
- What changes were made and which components were modified
- Who is affected and any notable considerations`

const largePRInstructions = `Write a 2-paragraph summary:

**Paragraph 1 (4-5 sentences):**
- What problem was being solved or what feature was needed?
- What was the state of things before this change?
- Include any relevant context from the PR description

**Paragraph 2 (4-5 sentences):**
- What changes were made to address this?
- Which components or files were modified?
- Who is affected by this change (users, operators, internal systems)?
- Any notable side effects or follow-up work?`

// The response format directive pins the two headings the report
// renderer keys on, so provider output slots straight into the PR
// sections.
const promptTemplate = `Generate a human-readable summary of this pull request. The summary should be understandable by someone unfamiliar with this area of the codebase.

**PR Title:** %s

**PR Description:**
%s

**Changed Files (%d files):**
%s

**Repository:** %s

---

%s

Also, extract any links to:
- Project trackers
- GitHub issues

Format your response as:

## Summary

[Your summary here]

## Related Resources

- [Link text](url) - if found
- [Another link](url) - if found

If no related resources found, write "None found in PR description"
`

// BuildPrompt renders the summarization prompt for one pull request.
// The instructions scale with the number of changed files so small
// PRs get short summaries and large ones get a structured treatment.
func BuildPrompt(req SummaryRequest) string {
	body := req.Body
	if body == "" {
		body = "No description provided"
	}
	return fmt.Sprintf(promptTemplate,
		req.Title, body, len(req.Files), fileList(req.Files), req.Repository, instructionsFor(len(req.Files)))
}

func instructionsFor(fileCount int) string {
	switch {
	case fileCount <= 2:
		return smallPRInstructions
	case fileCount <= 10:
		return mediumPRInstructions
	default:
		return largePRInstructions
	}
}

func fileList(files []string) string {
	shown := files
	if len(files) > promptFileCap {
		shown = files[:promptFileCap]
	}

	var sb strings.Builder
	for i, path := range shown {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- " + path)
	}
	if rest := len(files) - promptFileCap; rest > 0 {
		sb.WriteString(fmt.Sprintf("\n... and %d more files", rest))
	}
	return sb.String()
}
