package classify

import (
	"strings"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// Upgrade summaries. Message in an UpgradeResult is always one of these.
const (
	UpgradeFailed          = "❌ Upgrade failed - check the output below"
	UpgradeAlreadyUpToDate = "✅ All mods are already up to date!"
	UpgradeDownloaded      = "🚀 Successfully downloaded and installed mod updates!"
	UpgradeCheckedUpToDate = "✅ All mods checked and confirmed up to date!"
	UpgradeProcessed       = "🚀 Successfully processed and updated mods!"
	UpgradeVersionsChecked = "🔍 Successfully checked mod versions!"
	UpgradeNoMods          = "ℹ️ No mods found to upgrade - add some mods first!"
	UpgradeEmptyOutput     = "✅ Upgrade completed successfully!"
	UpgradeCompleted       = "🚀 Upgrade process completed!"
)

// CombineOutput joins stdout and stderr with a newline when both are
// non-empty, otherwise returns whichever one has content.
func CombineOutput(stdout, stderr string) string {
	switch {
	case stdout != "" && stderr != "":
		return stdout + "\n" + stderr
	case stderr != "":
		return stderr
	default:
		return stdout
	}
}

// ClassifyUpgrade summarises an upgrade invocation.
//
// The summary is a pure function of the exit status and the combined
// output; marker phrases are tested on the lower-cased text in a fixed
// priority order and the first hit wins.
func ClassifyUpgrade(exitSucceeded bool, stdout, stderr string) model.UpgradeResult {
	combined := CombineOutput(stdout, stderr)
	if !exitSucceeded {
		return model.UpgradeResult{
			Success:   false,
			Message:   UpgradeFailed,
			RawOutput: combined,
		}
	}
	return model.UpgradeResult{
		Success:   true,
		Message:   upgradeSummary(combined),
		RawOutput: combined,
	}
}

func upgradeSummary(combined string) string {
	lower := strings.ToLower(combined)
	has := func(s string) bool { return strings.Contains(lower, s) }

	switch {
	case has("all up to date!"):
		return UpgradeAlreadyUpToDate
	case has("downloading") && has("mod"):
		return UpgradeDownloaded
	case has("✓") && (has(".jar") || has("fabric") || has("forge")):
		if has("all up to date") {
			return UpgradeCheckedUpToDate
		}
		return UpgradeProcessed
	case has("determining") && has("versions"):
		return UpgradeVersionsChecked
	case has("no mods") || (has("no") && has("mod")):
		return UpgradeNoMods
	case strings.TrimSpace(combined) == "":
		return UpgradeEmptyOutput
	default:
		return UpgradeCompleted
	}
}
