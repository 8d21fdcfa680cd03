package llm

import (
	"regexp"
	"strings"
)

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// CleanJSONResponse extracts the JSON object from an LLM response: it strips
// markdown code fences, cuts anything before the first brace and after its
// matching close, and removes trailing commas, a common model error.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	first := strings.Index(response, "{")
	if first == -1 {
		return response
	}

	depth := 0
	last := -1
	inString := false
	escaped := false
	for i := first; i < len(response); i++ {
		c := response[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					last = i
				}
			}
		}
		if last != -1 {
			break
		}
	}
	if last == -1 {
		// Unbalanced braces; fall back to the last closing brace.
		last = strings.LastIndex(response, "}")
		if last <= first {
			return response
		}
	}

	cleaned := response[first : last+1]
	cleaned = trailingCommaRe.ReplaceAllString(cleaned, "$1")
	return strings.TrimSpace(cleaned)
}
