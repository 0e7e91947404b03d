package main

import "regexp"

// Link lines embed absolute paths of the machine that produced the output.
var linkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^Quick Link >[^\n]*\n`),
	regexp.MustCompile(`(?m)^\*\*\* FILE [^\n]*\n`),
}

// normalize removes host-specific link lines from compiler output.
// A line is only removed together with its terminator, so an unterminated
// final line is kept as is.
func normalize(text string) string {
	for _, re := range linkPatterns {
		text = re.ReplaceAllString(text, "")
	}
	return text
}
