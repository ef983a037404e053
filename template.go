// Package oasgen is the runtime support library for clients generated by
// the oasgen command. Generated code depends only on the types in this
// package: the operation table, the path template engine and the dispatching
// Client.
package oasgen

import (
	"fmt"
	"net/url"
	"strings"
)

// MissingPathParamsError is returned by InterpolatePath when one or more
// placeholders have no value. Names holds every missing placeholder, not
// just the first one encountered.
type MissingPathParamsError struct {
	Template string
	Names    []string
}

func (e *MissingPathParamsError) Error() string {
	return fmt.Sprintf("missing path parameters [%s] for template %q",
		strings.Join(e.Names, ", "), e.Template)
}

// ExtractParams returns the placeholder names appearing in a path template,
// in first-occurrence order. A name repeated in the template is reported
// once: it is a single logical parameter replaced at every occurrence.
func ExtractParams(template string) []string {
	var names []string
	seen := make(map[string]bool)

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			break
		}

		name := rest[open+1 : open+end]
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}

		rest = rest[open+end+1:]
	}

	return names
}

// InterpolatePath substitutes every placeholder in template with the
// percent-encoded string form of its value. The whole template is scanned
// before deciding success, so a failure reports all missing names together
// rather than one at a time. A template without placeholders is returned
// unchanged.
func InterpolatePath(template string, values map[string]any) (string, error) {
	result := template
	var missing []string

	for _, name := range ExtractParams(template) {
		value, ok := values[name]
		if !ok || value == nil {
			missing = append(missing, name)
			continue
		}

		encoded := url.PathEscape(fmt.Sprintf("%v", value))
		result = strings.ReplaceAll(result, "{"+name+"}", encoded)
	}

	if len(missing) > 0 {
		return "", &MissingPathParamsError{Template: template, Names: missing}
	}

	return result, nil
}
