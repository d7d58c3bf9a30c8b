package classify

import "github.com/shinji-kodama/ferium-companion/internal/model"

// OutputClassifier maps raw tool output to typed results.
type OutputClassifier interface {
	// AddedName recovers the tool's own name for a mod from the output
	// of a successful add. It reports false when nothing usable is found.
	AddedName(stdout string) (string, bool)

	// Upgrade summarises the outcome of an upgrade invocation.
	Upgrade(outcome model.Outcome) model.UpgradeResult

	// ModList extracts the newline-joined mod list from list output.
	ModList(stdout string) string
}

// Text is the OutputClassifier for ferium's human-readable output.
type Text struct{}

// AddedName implements OutputClassifier using ExtractAddedName.
func (Text) AddedName(stdout string) (string, bool) {
	return ExtractAddedName(stdout)
}

// Upgrade implements OutputClassifier using ClassifyUpgrade.
func (Text) Upgrade(outcome model.Outcome) model.UpgradeResult {
	return ClassifyUpgrade(outcome.ExitSucceeded, outcome.Stdout, outcome.Stderr)
}

// ModList implements OutputClassifier using ParseModList.
func (Text) ModList(stdout string) string {
	return ParseModList(stdout)
}

// Ensure Text implements OutputClassifier.
var _ OutputClassifier = Text{}
