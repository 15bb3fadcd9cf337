package structured

import (
	"regexp"
	"strings"
)

// Split is the result of splitting a response at a section marker.
type Split struct {
	// Primary is the trimmed text before the marker, or the whole text when
	// the marker is absent.
	Primary string
	// Secondary is the trimmed text after the marker.
	Secondary string
	// Found reports whether the marker was present.
	Found bool
}

// SplitMarker splits text at the first occurrence of marker.
func SplitMarker(text, marker string) Split {
	if marker == "" {
		return Split{Primary: strings.TrimSpace(text)}
	}
	idx := strings.Index(text, marker)
	if idx < 0 {
		return Split{Primary: strings.TrimSpace(text)}
	}
	return Split{
		Primary:   strings.TrimSpace(text[:idx]),
		Secondary: strings.TrimSpace(text[idx+len(marker):]),
		Found:     true,
	}
}

// List parses the secondary section as a list. It returns prior unchanged
// when the marker was absent or the section is empty.
func (s Split) List(prior []string) []string {
	if !s.Found {
		return prior
	}
	items := ParseList(s.Secondary)
	if len(items) == 0 {
		return prior
	}
	return items
}

var (
	ordinalPattern = regexp.MustCompile(`^\s*\d+(?:[.)]\s+|\s+-\s+)`)
	bulletPattern  = regexp.MustCompile(`^\s*[-*•]\s+`)
	fencePattern   = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\\n?(.*?)```")
)

// StripOrdinal removes a leading ordinal such as "1. ", "2) " or "3 - " and
// trims the remainder. Other text is returned trimmed.
func StripOrdinal(item string) string {
	return strings.TrimSpace(ordinalPattern.ReplaceAllString(item, ""))
}

// ParseList splits a short list. Text spanning several lines is split on
// newlines, single-line text on commas. Ordinals and bullets are stripped,
// items trimmed and empty items dropped. The result is never nil.
func ParseList(text string) []string {
	text = strings.TrimSpace(text)
	items := []string{}
	if text == "" {
		return items
	}

	sep := ","
	if strings.Contains(text, "\n") {
		sep = "\n"
	}

	for _, raw := range strings.Split(text, sep) {
		item := bulletPattern.ReplaceAllString(raw, "")
		item = StripOrdinal(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// StripFences returns the content of the first fenced code block in text. A
// leading fence without a closing one (truncated output) is dropped. Text
// without fences is returned trimmed.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(trimmed, "```") {
		rest := strings.TrimPrefix(trimmed, "```")
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		} else {
			rest = ""
		}
		return strings.TrimSpace(rest)
	}
	return trimmed
}
