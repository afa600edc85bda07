package commands

import "strings"

// ParseLine splits one command line into its fields. Fields are comma
// separated; surrounding whitespace is trimmed and empty fields (from
// trailing commas and the like) are dropped. A line with no fields
// parses to nil.
func ParseLine(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	var fields []string
	for _, f := range strings.Split(line, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
