// Package profile manages named mod lists.
//
// A profile is an ordered list of mod identifiers that can be saved from
// the tool's current state, stored on disk as YAML, shared through a
// GitHub repository, and later imported back into the tool.
package profile

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shinji-kodama/ferium-companion/internal/classify"
)

// Profile sources.
const (
	SourceLocal  = "local"
	SourceText   = "text"
	SourceGitHub = "github"
)

// Profile is a named, ordered list of mod identifiers.
type Profile struct {
	// Name identifies the profile and names its file.
	Name string `yaml:"name" json:"name"`

	// Mods are the identifiers passed to the tool's add command, in order.
	Mods []string `yaml:"mods" json:"mods"`

	// Source records where the profile came from: "local" for a capture of
	// the tool's state, "text" for a pasted or file-based list, or the
	// GitHub location it was fetched from.
	Source string `yaml:"source,omitempty" json:"source,omitempty"`

	// SavedAt is when the profile was written to disk.
	SavedAt time.Time `yaml:"savedAt" json:"savedAt"`
}

// namePattern restricts profile names to characters that are safe as file
// names on every platform.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks that name can be used as a profile name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name must not be empty")
	}
	if len(name) > 64 {
		return fmt.Errorf("profile name %q is too long (max 64 characters)", name)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: use letters, digits, '.', '_' or '-'", name)
	}
	return nil
}

// NameFromFile derives a profile name from a file name by dropping its
// directory and extension ("packs/fabric-1.21.txt" -> "fabric-1.21").
func NameFromFile(file string) string {
	base := path.Base(filepath.ToSlash(file))
	if ext := path.Ext(base); ext == ".txt" || ext == ".yaml" || ext == ".yml" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// Parse builds a profile from plain text with one identifier per line.
// Blank lines and lines starting with '#' are ignored.
func Parse(name, source, text string) *Profile {
	mods := classify.SplitIdentifiers(text)
	if mods == nil {
		mods = []string{}
	}
	return &Profile{Name: name, Mods: mods, Source: source}
}

// Text renders the mod list one identifier per line, the same format
// Parse reads and the export command copies to the clipboard.
func (p *Profile) Text() string {
	return strings.Join(p.Mods, "\n")
}
