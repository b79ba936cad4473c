package render

import (
	"regexp"
	"strings"
)

// Kind represents the block-level classification of one report line.
type Kind int

const (
	KindBlank Kind = iota
	KindTitle
	KindSummaryMarker
	KindStatsMarker
	KindSectionLink
	KindSection
	KindFilesHeading
	KindSubHeading
	KindRule
	KindListItem
	KindMetadata
	KindParagraph
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindSummaryMarker:
		return "summary-marker"
	case KindStatsMarker:
		return "stats-marker"
	case KindSectionLink:
		return "section-link"
	case KindSection:
		return "section"
	case KindFilesHeading:
		return "files-heading"
	case KindSubHeading:
		return "subheading"
	case KindRule:
		return "rule"
	case KindListItem:
		return "list-item"
	case KindMetadata:
		return "metadata"
	case KindParagraph:
		return "paragraph"
	default:
		return "blank"
	}
}

const (
	summaryMarker = "## Summary"
	statsMarker   = "## Summary Statistics"
)

// headingLinkPattern matches section headings whose body is a markdown
// link, anchored at the start of the line. Trailing text after the link
// is tolerated and dropped.
var headingLinkPattern = regexp.MustCompile(`^## \[(.*?)\]\((.*?)\)`)

// metadataExclusions are label words that mark a bold-label line as prose
// rather than metadata. They keep sub-labels emitted inside LLM summaries
// (and the changed-files heading echo) out of the metadata container.
var metadataExclusions = []string{"Summary", "Related", "Changed"}

// Classify maps a raw line to its block kind. First match wins. The two
// marker kinds compare the whole line, so they cannot collide with the
// prefix forms. insideSummary mirrors the renderer's container state:
// bold-label lines inside an open summary container are prose.
func Classify(line string, insideSummary bool) Kind {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "# "):
		return KindTitle
	case line == summaryMarker:
		return KindSummaryMarker
	case line == statsMarker:
		return KindStatsMarker
	case strings.HasPrefix(line, "## ") && headingLinkPattern.MatchString(line):
		return KindSectionLink
	case strings.HasPrefix(line, "## "):
		return KindSection
	case strings.HasPrefix(line, "### "):
		if strings.HasPrefix(strings.TrimPrefix(line, "### "), "Changed Files") {
			return KindFilesHeading
		}
		return KindSubHeading
	case trimmed == "---":
		return KindRule
	case strings.HasPrefix(trimmed, "- "):
		return KindListItem
	case isMetadataLine(line, insideSummary):
		return KindMetadata
	case trimmed == "":
		return KindBlank
	case !strings.HasPrefix(line, "#"):
		return KindParagraph
	default:
		// A #-prefixed line matching no heading form renders as nothing.
		return KindBlank
	}
}

func isMetadataLine(line string, insideSummary bool) bool {
	if insideSummary {
		return false
	}
	if !strings.HasPrefix(line, "**") || !strings.Contains(line, ":") {
		return false
	}
	label := line[2:]
	if i := strings.Index(label, ":"); i >= 0 {
		label = label[:i]
	}
	for _, word := range metadataExclusions {
		if strings.Contains(label, word) {
			return false
		}
	}
	return true
}
