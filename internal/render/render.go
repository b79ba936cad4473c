// Package render converts digest reports from their markdown dialect
// into standalone HTML documents suitable for email bodies.
//
// The dialect is the small, fixed subset of markdown the report
// builder emits: a title line, section headings that may carry a
// link, bold-label metadata lines, list items, horizontal rules, and
// four styled containers (summary, files, stats, metadata) opened and
// closed by specific heading and label lines. Conversion is a single
// forward scan over the lines with no lookahead.
package render

import (
	"fmt"
	"regexp"
	"strings"
)

// metadataPattern splits a metadata line into its bold label and the
// remainder of the line.
var metadataPattern = regexp.MustCompile(`\*\*(.*?):\*\*(.*)`)

// state tracks the output fragments and open containers during a
// single document scan.
type state struct {
	parts      []string
	inSummary  bool
	inFiles    bool
	inStats    bool
	inMetadata bool
}

// HTML converts a markdown report to a complete HTML document with an
// embedded stylesheet. It never fails: lines that match no known form
// render as paragraphs, and any container still open at end of input
// is closed so the document stays balanced.
func HTML(markdown string) string {
	st := &state{parts: []string{documentHead}}
	for _, line := range strings.Split(markdown, "\n") {
		st.render(line)
	}
	st.finish()
	st.parts = append(st.parts, "</body></html>")
	return strings.Join(st.parts, "\n")
}

func (st *state) render(line string) {
	switch Classify(line, st.inSummary) {
	case KindTitle:
		st.emit("<h1>%s</h1>", Inline(line[2:]))
	case KindSummaryMarker:
		st.parts = append(st.parts, `<div class="summary">`)
		st.inSummary = true
	case KindStatsMarker:
		st.closeFiles()
		st.parts = append(st.parts, `<div class="stats"><h3>Summary Statistics</h3>`)
		st.inStats = true
	case KindSectionLink:
		st.closeSummary()
		st.closeFiles()
		m := headingLinkPattern.FindStringSubmatch(line)
		st.emit(`<h2><a href="%s">%s</a></h2>`, m[2], Inline(m[1]))
	case KindSection:
		st.closeSummary()
		st.closeFiles()
		st.emit("<h2>%s</h2>", Inline(line[3:]))
	case KindFilesHeading:
		st.closeSummary()
		st.parts = append(st.parts, `<h3>Changed Files</h3><div class="files">`)
		st.inFiles = true
	case KindSubHeading:
		st.closeSummary()
		st.emit("<h3>%s</h3>", Inline(line[4:]))
	case KindRule:
		st.closeSummary()
		st.closeFiles()
		st.closeStats()
		st.parts = append(st.parts, "<hr>")
	case KindListItem:
		item := strings.TrimPrefix(strings.TrimSpace(line), "- ")
		st.emit("<li>%s</li>", Inline(item))
	case KindMetadata:
		if !st.renderMetadata(line) {
			st.emit("<p>%s</p>", Inline(line))
		}
	case KindParagraph:
		st.emit("<p>%s</p>", Inline(line))
	}
}

// renderMetadata handles a bold-label line. It reports false when the
// label form does not parse, in which case the caller falls back to
// paragraph output.
func (st *state) renderMetadata(line string) bool {
	m := metadataPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	label := m[1]
	value := strings.TrimSpace(m[2])

	// The report header's Total PRs / Report Period lines open the
	// metadata container. It opens at most once per document.
	if (label == "Total PRs" || label == "Report Period") && !st.inMetadata {
		st.closeStats()
		st.parts = append(st.parts, `<div class="metadata">`)
		st.inMetadata = true
	}

	switch label {
	case "Components", "Labels":
		items := strings.Split(value, ", ")
		for i, item := range items {
			items[i] = "<code>" + item + "</code>"
		}
		value = strings.Join(items, ", ")
	case "Filters":
		value = strings.ReplaceAll(Inline(value), "Slice: ", "Slice:&nbsp;")
	default:
		value = Inline(value)
	}

	st.emit("<p><strong>%s:</strong> %s</p>", label, value)
	if label == "Filters" {
		st.closeMetadata()
	}
	return true
}

func (st *state) emit(format string, args ...any) {
	st.parts = append(st.parts, fmt.Sprintf(format, args...))
}

func (st *state) closeSummary() {
	if st.inSummary {
		st.parts = append(st.parts, "</div>")
		st.inSummary = false
	}
}

func (st *state) closeFiles() {
	if st.inFiles {
		st.parts = append(st.parts, "</div>")
		st.inFiles = false
	}
}

func (st *state) closeStats() {
	if st.inStats {
		st.parts = append(st.parts, "</div>")
		st.inStats = false
	}
}

func (st *state) closeMetadata() {
	if st.inMetadata {
		st.parts = append(st.parts, "</div>")
		st.inMetadata = false
	}
}

// finish closes whatever containers the input left open.
func (st *state) finish() {
	st.closeSummary()
	st.closeFiles()
	st.closeStats()
	st.closeMetadata()
}
