// Package jsonutil extracts and decodes JSON payloads from LLM responses,
// which routinely arrive wrapped in markdown code fences or surrounded by prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes a leading ```json (or bare ```) fence and its closing
// fence. Text without fences is returned unchanged.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	// Drop the opening fence line.
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		return text
	}
	// Drop everything from the closing fence on.
	if end := strings.LastIndex(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

// Extract returns the first JSON object or array embedded in text.
// It locates the earliest { or [ and pairs it with the last matching
// } or ], which is sufficient for single-document LLM responses.
func Extract(text string) (string, error) {
	text = stripFences(text)

	objIdx := strings.IndexByte(text, '{')
	arrIdx := strings.IndexByte(text, '[')
	if objIdx < 0 && arrIdx < 0 {
		return "", fmt.Errorf("no JSON content found")
	}

	start, closer := objIdx, byte('}')
	if objIdx < 0 || (arrIdx >= 0 && arrIdx < objIdx) {
		start, closer = arrIdx, ']'
	}

	text = text[start:]
	end := strings.LastIndexByte(text, closer)
	if end < 0 {
		return "", fmt.Errorf("unterminated JSON: no closing %c", closer)
	}
	return text[:end+1], nil
}

// Decode extracts the JSON document from a raw LLM response and unmarshals
// it into T. The error includes a truncated preview of the offending text
// so malformed model output can be diagnosed from logs.
func Decode[T any](raw string) (T, error) {
	var result T

	doc, err := Extract(raw)
	if err != nil {
		return result, fmt.Errorf("%w (response length: %d)", err, len(raw))
	}

	if err := json.Unmarshal([]byte(doc), &result); err != nil {
		preview := doc
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		var zero T
		return zero, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview)
	}
	return result, nil
}
