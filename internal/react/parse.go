package react

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parsed is a structured view of one model response.
type Parsed struct {
	Thought     string
	Action      string
	ActionInput map[string]any
	FinalAnswer string
	IsFinal     bool
}

// Parse extracts the directive from a model response. Responses carry
// either a final answer or an action with a JSON input; anything else
// is a parse error the loop feeds back as a corrective observation.
func Parse(content string) (*Parsed, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, fmt.Errorf("empty response")
	}

	p := &Parsed{Thought: extractThought(text)}

	// Final Answer wins even when an action also appears; once the
	// model declares an answer the run is over.
	if idx := indexOfMarker(text, "Final Answer:"); idx >= 0 {
		p.IsFinal = true
		p.FinalAnswer = strings.TrimSpace(text[idx+len("Final Answer:"):])
		if p.FinalAnswer == "" {
			return nil, fmt.Errorf("final answer is empty")
		}
		return p, nil
	}

	actionIdx := indexOfMarker(text, "Action:")
	if actionIdx < 0 {
		return nil, fmt.Errorf("no Action or Final Answer found")
	}
	actionLine := text[actionIdx+len("Action:"):]
	if nl := strings.IndexByte(actionLine, '\n'); nl >= 0 {
		actionLine = actionLine[:nl]
	}
	p.Action = strings.Trim(strings.TrimSpace(actionLine), "`\"")
	if p.Action == "" {
		return nil, fmt.Errorf("Action names no tool")
	}

	inputIdx := indexOfMarker(text, "Action Input:")
	if inputIdx < 0 {
		return nil, fmt.Errorf("Action without Action Input")
	}
	raw := strings.TrimSpace(text[inputIdx+len("Action Input:"):])
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, fmt.Errorf("Action Input: %w", err)
	}
	p.ActionInput = obj
	return p, nil
}

// extractThought pulls the text after "Thought:" up to the next
// directive marker. Missing thought is fine; it is advisory only.
func extractThought(text string) string {
	idx := indexOfMarker(text, "Thought:")
	if idx < 0 {
		return ""
	}
	rest := text[idx+len("Thought:"):]
	for _, marker := range []string{"Action:", "Final Answer:"} {
		if m := indexOfMarker(rest, marker); m >= 0 {
			rest = rest[:m]
		}
	}
	return strings.TrimSpace(rest)
}

// indexOfMarker finds a directive marker at the start of a line.
func indexOfMarker(text, marker string) int {
	if strings.HasPrefix(text, marker) {
		return 0
	}
	idx := strings.Index(text, "\n"+marker)
	if idx < 0 {
		return -1
	}
	return idx + 1
}

// extractJSONObject parses the first balanced JSON object in raw,
// tolerating markdown code fences and trailing prose.
func extractJSONObject(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSpace(raw)

	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(raw[start:i+1]), &obj); err != nil {
					return nil, fmt.Errorf("invalid JSON: %w", err)
				}
				return obj, nil
			}
		}
	}
	return nil, fmt.Errorf("unbalanced JSON object")
}
