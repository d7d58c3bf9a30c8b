package classify

import "strings"

// ParseModList extracts the installed mods from the output of the tool's
// list command.
//
// The first line is a count header and is skipped. Every following line
// contributes its second whitespace-separated token; lines with fewer
// than two tokens are dropped. The surviving tokens are joined with
// newlines in their original order.
func ParseModList(stdout string) string {
	lines := strings.Split(stdout, "\n")
	if len(lines) <= 1 {
		return ""
	}

	mods := make([]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		mods = append(mods, fields[1])
	}
	return strings.Join(mods, "\n")
}

// SplitIdentifiers splits newline-separated text into trimmed, non-blank
// identifiers, dropping lines that start with "#".
func SplitIdentifiers(text string) []string {
	var ids []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids
}
