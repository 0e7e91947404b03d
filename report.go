package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI escape codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

const (
	expectedPrefix = " - |"
	actualPrefix   = " + |"
)

// Summary counts the verdicts of one suite.
type Summary struct {
	Passed int
	Failed int
	Total  int
}

func (s *Summary) add(res *Result) {
	s.Total++
	if res.Passed() {
		s.Passed++
	} else {
		s.Failed++
	}
}

// reporter prints verdicts and summaries. Its output is the whole visible
// contract of a run.
type reporter struct {
	w     io.Writer
	color bool
}

func newReporter(w io.Writer) *reporter {
	return &reporter{w: w, color: useColor(w)}
}

// useColor reports whether w is a terminal that accepts colored tags.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (r *reporter) tag(v Verdict) string {
	tag := "[" + v.String() + "]"
	if !r.color {
		return tag
	}
	switch v {
	case VerdictPass:
		return colorGreen + tag + colorReset
	case VerdictFail:
		return colorRed + tag + colorReset
	default:
		return colorYellow + tag + colorReset
	}
}

// result prints one fixture. A mismatch is followed by the expected and
// the actual text, each surrounded by blank lines.
func (r *reporter) result(res *Result) {
	fmt.Fprintf(r.w, "%s %s\n", r.tag(res.Verdict), res.ID)
	if res.Verdict != VerdictFail {
		return
	}
	fmt.Fprintf(r.w, "\n%s\n\n%s\n\n",
		padLines(res.Expected, expectedPrefix),
		padLines(res.Actual, actualPrefix))
}

func (r *reporter) summary(s Summary) {
	fmt.Fprintf(r.w, "Passed: %d, failed: %d, total: %d\n", s.Passed, s.Failed, s.Total)
}

// padLines prefixes every line of text. A trailing newline yields a final
// line holding only the prefix, so terminator differences stay visible.
func padLines(text, prefix string) string {
	return prefix + strings.ReplaceAll(text, "\n", "\n"+prefix)
}
