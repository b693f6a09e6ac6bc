package transcript

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	timestampPattern = regexp.MustCompile(`^(\d{1,2}:)?\d{1,2}:\d{2}[.,]\d{1,3}\s*-->`)
)

// ParseCaptions extracts the spoken text of SRT or WebVTT captions, one
// entry per caption line. Input without any timing lines is treated as plain
// text: lines are kept as written, only blank lines are dropped.
func ParseCaptions(data string) []string {
	data = strings.ReplaceAll(strings.TrimPrefix(data, "\ufeff"), "\r\n", "\n")
	if data == "" {
		return []string{}
	}

	lines := strings.Split(data, "\n")
	captions := make([]string, 0, len(lines))

	if !isCaptionFormat(lines) {
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				captions = append(captions, line)
			}
		}
		return captions
	}

	inNote := false
	for i, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" {
			inNote = false
			continue
		}
		if inNote {
			continue
		}

		switch {
		case i == 0 && strings.HasPrefix(line, "WEBVTT"):
			continue
		case strings.HasPrefix(line, "NOTE") && (len(line) == 4 || line[4] == ' '):
			inNote = true
			continue
		case strings.HasPrefix(line, "STYLE") || strings.HasPrefix(line, "REGION"):
			inNote = true
			continue
		case timestampPattern.MatchString(line):
			continue
		case nextIsTimestamp(lines, i):
			// SRT sequence number or VTT cue identifier
			continue
		}

		text := strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(line, "")))
		if text != "" {
			captions = append(captions, text)
		}
	}

	return captions
}

// JoinCaptions joins caption lines into transcript text separated by single spaces
func JoinCaptions(captions []string) string {
	return strings.Join(captions, " ")
}

func nextIsTimestamp(lines []string, i int) bool {
	return i+1 < len(lines) && timestampPattern.MatchString(strings.TrimSpace(lines[i+1]))
}

// isCaptionFormat reports whether lines look like SRT or WebVTT: a WEBVTT
// header or at least one cue timing line
func isCaptionFormat(lines []string) bool {
	if strings.HasPrefix(strings.TrimSpace(lines[0]), "WEBVTT") {
		return true
	}
	for _, line := range lines {
		if timestampPattern.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}
