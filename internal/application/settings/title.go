package settings

import (
	"strconv"
	"strings"
	"time"
)

// ExpandTitle fills the date placeholders of a title template:
// {YEAR}, {WEEK}, {FIRST(format)} and {LAST(format)}. Templates of
// all-time reports (no first date) are returned unchanged.
func ExpandTitle(template string, first, last *time.Time) string {
	if first == nil {
		return template
	}
	if last == nil {
		last = first
	}

	_, week := first.ISOWeek()
	title := strings.ReplaceAll(template, "{YEAR}", strconv.Itoa(first.Year()))
	title = strings.ReplaceAll(title, "{WEEK}", pad2(week))
	title = replaceDateTokens(title, "FIRST", *first)
	return replaceDateTokens(title, "LAST", *last)
}

// replaceDateTokens scans for every {NAME(format)} token left to right.
// Scanning resumes after the inserted text, so a formatted date is never
// expanded again.
func replaceDateTokens(s, name string, date time.Time) string {
	open := "{" + name + "("
	const closing = ")}"

	from := 0
	for {
		start := strings.Index(s[from:], open)
		if start < 0 {
			return s
		}
		start += from
		formatStart := start + len(open)
		end := strings.Index(s[formatStart:], closing)
		if end < 0 {
			return s
		}
		formatted := formatDate(date, s[formatStart:formatStart+end])
		s = s[:start] + formatted + s[formatStart+end+len(closing):]
		from = start + len(formatted)
	}
}
