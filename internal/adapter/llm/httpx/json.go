package httpx

import (
	"regexp"
	"strings"
)

var (
	// Greedy match from the first opening fence to the LAST closing fence so
	// nested code blocks inside the payload survive extraction.
	jsonBlockRegex = regexp.MustCompile("(?s)```(?:json|python)?\\s*([\\s\\S]*)```")
)

// ExtractFenced extracts the payload from a markdown code fence. Models are
// instructed to return bare JSON or bare code, but in practice they wrap
// both in fences more often than not. If no fence is found the trimmed
// original text is returned unchanged.
func ExtractFenced(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// SliceJSONArray returns the outermost JSON-array slice of text, or the
// input unchanged when no array brackets are present. Auditor models tend
// to surround the issue array with prose; cutting at the outer brackets
// recovers the payload without attempting to parse the chatter.
func SliceJSONArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}

// SliceJSONObject is SliceJSONArray for a single top-level object.
func SliceJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return text
	}
	return text[start : end+1]
}
