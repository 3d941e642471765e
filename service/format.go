package service

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	markupRe        = regexp.MustCompile(`[*#]`)
	htmlTagRe       = regexp.MustCompile(`(?i)</?(b|i|ul|ol|li)>`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	alphanumericRe  = regexp.MustCompile(`[A-Za-z0-9]`)
	leadingBulletRe = regexp.MustCompile(`^\s*([0-9]+\.|[-*+])\s*`)
)

// FormatBotResponse turns raw model output into either plain cleaned text or
// a numbered list, never a mix. Markdown emphasis markers and a fixed set of
// HTML tags are stripped, whitespace is collapsed, and the text is split into
// sentences on terminal punctuation. Fewer than three sentences with real
// alphanumeric content come back as a single cleaned block; three or more are
// rendered one per line with 1-based numbering, any pre-existing leading
// bullet or number dropped first.
func FormatBotResponse(text string) string {
	cleaned := markupRe.ReplaceAllString(text, "")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	sentences := []string{}
	for _, s := range splitSentences(cleaned) {
		s = strings.TrimSpace(s)
		if s != "" && alphanumericRe.MatchString(s) {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) < 3 {
		return cleaned
	}

	lines := make([]string, len(sentences))
	for i, s := range sentences {
		lines[i] = fmt.Sprintf("%d. %s", i+1, leadingBulletRe.ReplaceAllString(s, ""))
	}
	return strings.Join(lines, "\n")
}

// splitSentences splits on terminal punctuation followed by a space. The
// input has already had its whitespace collapsed to single spaces.
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c == '.' || c == '?' || c == '!') && i+1 < len(s) && s[i+1] == ' ' {
			out = append(out, s[start:i+1])
			start = i + 2
			i++
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// maxTitleRunes is how much of the first prompt becomes the conversation title
const maxTitleRunes = 50

// GenerateTitleFromPrompt derives a conversation title from the first prompt:
// the first 50 characters of the trimmed prompt, with "..." appended when
// truncated. An empty prompt falls back to "New Conversation".
func GenerateTitleFromPrompt(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "New Conversation"
	}
	runes := []rune(trimmed)
	if len(runes) <= maxTitleRunes {
		return trimmed
	}
	return string(runes[:maxTitleRunes]) + "..."
}
