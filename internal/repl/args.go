package repl

import (
	"fmt"
	"strings"
)

// splitArgs splits a command line into words. Single or double quotes group
// words and may appear mid-word (name="Ann Lee"); a backslash escapes the
// next character.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash")
	}
	if inWord {
		args = append(args, current.String())
	}
	return args, nil
}

// splitAssignment splits field=value.
func splitAssignment(arg string) (string, string, error) {
	field, value, ok := strings.Cut(arg, "=")
	if !ok || field == "" {
		return "", "", fmt.Errorf("expected field=value, got %q", arg)
	}
	return field, value, nil
}

// takeFlags removes --flags from args and returns them as a set.
func takeFlags(args []string) ([]string, map[string]bool) {
	rest := make([]string, 0, len(args))
	flags := make(map[string]bool)
	for _, a := range args {
		if strings.HasPrefix(a, "--") && len(a) > 2 {
			flags[strings.ToLower(a[2:])] = true
			continue
		}
		rest = append(rest, a)
	}
	return rest, flags
}
