package llm

import (
	"fmt"
	"regexp"
)

var variablePattern = regexp.MustCompile(`\{([a-zA-Z][a-zA-Z0-9_]*)\}`)

// Format substitutes {variableName} placeholders in template with the
// string form of the matching variable. Placeholders without a matching
// variable are left untouched.
func Format(template string, variables map[string]any) string {
	if template == "" || len(variables) == 0 {
		return template
	}

	return variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		value, ok := variables[name]
		if !ok || value == nil {
			return match
		}
		return fmt.Sprintf("%v", value)
	})
}
