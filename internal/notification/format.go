package notification

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Render formats a template body against the trigger context. Substitution is
// all-or-nothing: if any placeholder has no value in the context, the
// fallback text is returned instead of a partially substituted string. When
// the fallback is used and the context names the website, the website name is
// appended so the message is never fully generic.
//
// Render is a pure function and never fails; missing context only ever
// selects the fallback path.
func Render(tmpl Template, context map[string]any) string {
	rendered, complete := substitute(tmpl.Body, context)
	if !complete {
		fallback := tmpl.Fallback
		if name, ok := context["websiteName"]; ok {
			fallback += " for " + formatValue(name)
		}
		return fallback
	}

	// Count-style contexts get a pluralized summary clause unless the
	// caller already rendered one.
	if _, ok := context["issuesSummary"]; !ok {
		if count, ok := intValue(context["issuesCount"]); ok {
			rendered += issuesClause(count)
		}
	}

	return rendered
}

func substitute(body string, context map[string]any) (string, bool) {
	complete := true
	rendered := placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		key := match[1 : len(match)-1]
		value, ok := context[key]
		if !ok {
			complete = false
			return match
		}
		return formatValue(value)
	})
	return rendered, complete
}

func issuesClause(count int) string {
	switch count {
	case 0:
		return " No issues found - great job!"
	case 1:
		return " Found 1 issue to review."
	default:
		return fmt.Sprintf(" Found %d issues to review.", count)
	}
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// intValue normalizes the numeric types a context value can arrive as. JSON
// decoding hands us float64.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
