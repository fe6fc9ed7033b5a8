// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	fallbackSubject = "report"
	maxSubjectLen   = 50
	subjectScan     = 10
	subjectMinLen   = 10
	subjectWords    = 5
)

var (
	headingPattern  = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*$`)
	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Subject derives the filename subject for a report. Priority: a non-blank
// hint, the first level-1 heading, the first five words of the first
// substantial line among the first ten, then "report".
func Subject(report, hint string) string {
	if strings.TrimSpace(hint) != "" {
		return Sanitize(hint)
	}
	if m := headingPattern.FindStringSubmatch(report); m != nil {
		return Sanitize(m[1])
	}
	lines := strings.Split(report, "\n")
	if len(lines) > subjectScan {
		lines = lines[:subjectScan]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= subjectMinLen || strings.HasPrefix(line, "#") {
			continue
		}
		words := strings.Fields(line)
		if len(words) > subjectWords {
			words = words[:subjectWords]
		}
		return Sanitize(strings.Join(words, " "))
	}
	return fallbackSubject
}

// Sanitize makes text safe as a filename component: lowercase ASCII letters
// and digits joined by single underscores, at most 50 characters.
func Sanitize(text string) string {
	s := strings.ReplaceAll(strings.ToLower(text), "ß", "ss")
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.Trim(nonAlnumPattern.ReplaceAllString(s, "_"), "_")
	if len(s) > maxSubjectLen {
		s = strings.TrimRight(s[:maxSubjectLen], "_")
	}
	if s == "" {
		return fallbackSubject
	}
	return s
}
