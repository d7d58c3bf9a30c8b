package classify

import (
	"regexp"
	"strings"
)

// addedPatterns are the phrasings ferium uses when a mod is added or was
// already present, in priority order. The first capture group is the name.
var addedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Successfully added (.+)`),
	regexp.MustCompile(`Added (.+) successfully`),
	regexp.MustCompile(`✓ Added (.+)`),
	regexp.MustCompile(`Added: (.+)`),
	regexp.MustCompile(`The project has already been added: (.+)`),
	regexp.MustCompile(`Already added: (.+)`),
	regexp.MustCompile(`(.+) has already been added`),
	regexp.MustCompile(`(.+) is already installed`),
}

// progressPrefixes start lines that report transfer progress rather than
// a result.
var progressPrefixes = []string{"Downloading", "Fetching"}

// leadingMarkers are stripped from the front of a fallback candidate line.
// Order matters: "Successfully added" must go before "Added".
var leadingMarkers = []string{"Successfully added", "Added", "✓", "-", "•"}

// ExtractAddedName recovers the tool's canonical name for a mod from the
// stdout of a successful add.
//
// The known phrasings in addedPatterns are tried first. When none matches,
// the output is scanned line by line: blank lines, progress lines and
// very short lines are skipped, the first remaining line is stripped of
// leading markers and cut at the first "(" or "[" (version and loader
// metadata). Progress output precedes the result, so the scan starts after
// the last progress line and only falls back to the top of the output when
// nothing usable follows it.
//
// The second return value is false when no usable name was found; callers
// then keep the identifier they passed to the tool.
func ExtractAddedName(stdout string) (string, bool) {
	for _, re := range addedPatterns {
		if m := re.FindStringSubmatch(stdout); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				return name, true
			}
		}
	}

	lines := strings.Split(stdout, "\n")
	lastProgress := -1
	for i, line := range lines {
		if isProgressLine(strings.TrimSpace(line)) {
			lastProgress = i
		}
	}

	if name, ok := scanForName(lines[lastProgress+1:]); ok {
		return name, true
	}
	if lastProgress >= 0 {
		return scanForName(lines[:lastProgress])
	}
	return "", false
}

func scanForName(lines []string) (string, bool) {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isProgressLine(line) || len(line) <= 3 {
			continue
		}
		if name, ok := cleanNameLine(line); ok {
			return name, true
		}
	}
	return "", false
}

func isProgressLine(line string) bool {
	for _, prefix := range progressPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return strings.Contains(line, "bytes")
}

// cleanNameLine strips known markers and trailing metadata from a
// candidate line. It rejects results of one character or less.
func cleanNameLine(line string) (string, bool) {
	cleaned := line
	for _, marker := range leadingMarkers {
		if strings.HasPrefix(cleaned, marker) {
			cleaned = strings.TrimSpace(cleaned[len(marker):])
		}
	}

	if i := strings.IndexByte(cleaned, '('); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}
	if i := strings.IndexByte(cleaned, '['); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}

	if len([]rune(cleaned)) <= 1 {
		return "", false
	}
	return cleaned, true
}
