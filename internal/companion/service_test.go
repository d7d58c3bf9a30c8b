package companion

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/ferium-companion/internal/classify"
	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/status"
	"github.com/shinji-kodama/ferium-companion/internal/tool/tooltest"
)

// fakeClipboard records what was written and can be told to fail.
type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.err != nil {
		return &model.ClipboardError{Err: c.err}
	}
	c.text = text
	return nil
}

var fixedNow = func() time.Time {
	return time.Date(2026, 10, 15, 9, 5, 7, 0, time.Local)
}

func newTestService(runner *tooltest.Runner, opts ...Option) (*Service, *status.Slot, *fakeClipboard) {
	slot := status.NewSlot("")
	clip := &fakeClipboard{}
	base := []Option{WithStatus(slot), WithClipboard(clip), WithClock(fixedNow)}
	return NewService(runner, append(base, opts...)...), slot, clip
}

// assertImportInvariants checks the properties every ImportResult must
// satisfy for a given input.
func assertImportInvariants(t *testing.T, input []string, result model.ImportResult) {
	t.Helper()

	nonBlank := 0
	for _, id := range input {
		if strings.TrimSpace(id) != "" {
			nonBlank++
		}
	}
	assert.Equal(t, len(result.Failed) == 0, result.Success)
	assert.Equal(t, nonBlank, len(result.Processed)+len(result.Failed))
	for _, entry := range append(append([]string{}, result.Processed...), result.Failed...) {
		assert.NotEmpty(t, strings.TrimSpace(entry))
	}
}

func TestImportAll_Empty(t *testing.T) {
	runner := tooltest.NewRunner("ferium")
	svc, _, _ := newTestService(runner)

	result := svc.ImportAll(context.Background(), nil)
	assert.True(t, result.Success)
	assert.Empty(t, result.Processed)
	assert.Empty(t, result.Failed)
	assert.NotNil(t, result.Processed)
	assert.NotNil(t, result.Failed)
	assert.Equal(t, "✅ Successfully imported 0 mods", result.Message)
	assert.Empty(t, runner.Calls())
}

// TestImportAll_Mixed covers a batch with canonical-name recovery, name
// fallback, a non-zero exit, a launch failure and blank lines.
func TestImportAll_Mixed(t *testing.T) {
	runner := tooltest.NewRunner("ferium").
		Succeed("Successfully added Zoomify\n", "add", "zoomify").
		Succeed("", "add", "AANobbMI").
		Fail(1, "error: project not found\n", "add", "nope").
		Error(exec.ErrNotFound, "add", "lithium").
		Succeed("Fetching\nDownloading 12 bytes\nIris Shaders (1.7.0)\n", "add", "iris")

	svc, slot, _ := newTestService(runner)
	input := []string{"zoomify", "  ", "AANobbMI", "", "nope", "lithium", "\tiris\n"}

	result := svc.ImportAll(context.Background(), input)

	assert.False(t, result.Success)
	assert.Equal(t, []string{"Zoomify", "AANobbMI", "Iris Shaders"}, result.Processed)
	assert.Equal(t, []string{"nope", "lithium"}, result.Failed)
	assert.Equal(t, "⚠️ Imported 3 mods, 2 failed", result.Message)
	assertImportInvariants(t, input, result)

	// Sequential, in input order, blanks never reach the tool.
	assert.Equal(t, [][]string{
		{"add", "zoomify"},
		{"add", "AANobbMI"},
		{"add", "nope"},
		{"add", "lithium"},
		{"add", "iris"},
	}, runner.Calls())

	// The slot holds only the most recent completed invocation.
	snap := slot.Snapshot()
	assert.Equal(t, uint64(5), snap.Revision)
	assert.Equal(t, "Successfully imported mod: Iris Shaders", snap.Message)
}

func TestImportAll_AllSucceed(t *testing.T) {
	runner := tooltest.NewRunner("ferium").
		Succeed("Successfully added Sodium", "add", "sodium").
		Succeed("Sodium Extra has already been added", "add", "sodium-extra")
	svc, _, _ := newTestService(runner)

	result := svc.ImportAll(context.Background(), []string{"sodium", "sodium-extra"})
	assert.True(t, result.Success)
	assert.Equal(t, []string{"Sodium", "Sodium Extra"}, result.Processed)
	assert.Equal(t, "✅ Successfully imported 2 mods", result.Message)
}

func TestImportAll_FailureReportsStderr(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Fail(1, "rate limited\n", "add", "sodium")
	svc, slot, _ := newTestService(runner)

	result := svc.ImportAll(context.Background(), []string{"sodium"})
	assert.Equal(t, []string{"sodium"}, result.Failed)
	assert.Equal(t, "Command failed for mod 'sodium': rate limited", slot.Get())
}

// The tool is called with trimmed identifiers, but failures and name
// fallbacks are reported exactly as the caller supplied them.
func TestImportAll_KeepsIdentifiersAsSupplied(t *testing.T) {
	runner := tooltest.NewRunner("ferium").
		Fail(1, "error: project not found\n", "add", "nope").
		Error(exec.ErrNotFound, "add", "lithium").
		Succeed("", "add", "AANobbMI")
	svc, slot, _ := newTestService(runner)

	input := []string{"  nope ", "lithium\r", " AANobbMI\t"}
	result := svc.ImportAll(context.Background(), input)

	assert.Equal(t, [][]string{{"add", "nope"}, {"add", "lithium"}, {"add", "AANobbMI"}}, runner.Calls())
	assert.Equal(t, []string{"  nope ", "lithium\r"}, result.Failed)
	assert.Equal(t, []string{" AANobbMI\t"}, result.Processed)
	assert.Equal(t, "Successfully imported mod: AANobbMI", slot.Get())
	assertImportInvariants(t, input, result)
}

func TestImportAll_NilStatusSlot(t *testing.T) {
	runner := tooltest.NewRunner("ferium").
		Succeed("Successfully added Sodium\n", "add", "sodium").
		Fail(1, "error: project not found\n", "add", "nope")

	var slot *status.Slot
	svc := NewService(runner, WithStatus(slot), WithStatus(nil), WithClipboard(&fakeClipboard{}))

	var result model.ImportResult
	require.NotPanics(t, func() {
		result = svc.ImportAll(context.Background(), []string{"sodium", "nope"})
	})
	assert.Equal(t, []string{"Sodium"}, result.Processed)
	assert.Equal(t, []string{"nope"}, result.Failed)
}

// TestImportAll_CancelledMidBatch verifies that cancellation stops the
// batch and that identifiers never attempted still count as failed.
func TestImportAll_CancelledMidBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := tooltest.NewRunner("ferium").
		Succeed("Successfully added Sodium", "add", "sodium").
		OnInvoke(func(args []string) {
			if args[1] == "sodium" {
				cancel()
			}
		})
	svc, _, _ := newTestService(runner)

	input := []string{"sodium", "lithium", "iris"}
	result := svc.ImportAll(ctx, input)

	// The first call observed the cancellation inside Invoke.
	assert.Equal(t, []string{"sodium", "lithium", "iris"}, result.Failed)
	assert.Empty(t, result.Processed)
	assert.Len(t, runner.Calls(), 1)
	assertImportInvariants(t, input, result)
}

func TestExport_Success(t *testing.T) {
	runner := tooltest.NewRunner("ferium").
		Succeed("2 mods installed\n✓ sodium Sodium\n✓ lithium Lithium\n", "list")
	svc, slot, clip := newTestService(runner)

	result, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "📋 Mod list copied to clipboard", result.Message)
	assert.Equal(t, "sodium\nlithium", result.ModList)
	assert.Equal(t, "09:05:07", result.Timestamp)
	assert.Equal(t, "sodium\nlithium", clip.text)
	assert.Equal(t, "Copied mods at 09:05:07", slot.Get())
}

// TestExport_ClipboardFailure verifies that clipboard problems are
// reported inline and the computed list is still returned.
func TestExport_ClipboardFailure(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Succeed("1 mod\n✓ sodium Sodium\n", "list")
	svc, _, clip := newTestService(runner)
	clip.err = errors.New("xclip not found")

	result, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to copy to clipboard: xclip not found", result.Message)
	assert.Equal(t, "sodium", result.ModList)
	assert.Equal(t, "09:05:07", result.Timestamp)
}

func TestExport_ToolFailure(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Fail(1, "no profile selected\n", "list")
	svc, _, clip := newTestService(runner)

	_, err := svc.Export(context.Background())
	var exitErr *model.ToolExitFailure
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, "no profile selected", exitErr.Output)
	assert.Equal(t, []string{"list"}, exitErr.Args)
	assert.Empty(t, clip.text)
}

func TestExport_LaunchFailure(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Error(exec.ErrNotFound, "list")
	svc, _, _ := newTestService(runner)

	_, err := svc.Export(context.Background())
	var launchErr *model.LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestCaptureModList_SkipsClipboard(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Succeed("1 mod\n✓ sodium Sodium\n", "list")
	svc, _, clip := newTestService(runner)

	result, err := svc.CaptureModList(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "sodium", result.ModList)
	assert.Empty(t, clip.text)
}

func TestListMods(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Succeed("2 mods\n✓ sodium Sodium\n✓ iris Iris\n", "list")
	svc, _, _ := newTestService(runner)

	mods, err := svc.ListMods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sodium", "iris"}, mods)

	empty := tooltest.NewRunner("ferium").Succeed("0 mods\n", "list")
	svc, _, _ = newTestService(empty)
	mods, err = svc.ListMods(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestUpgrade(t *testing.T) {
	t.Run("up to date", func(t *testing.T) {
		runner := tooltest.NewRunner("ferium").Succeed("All up to date!", "upgrade")
		svc, slot, _ := newTestService(runner)

		result, err := svc.Upgrade(context.Background())
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, classify.UpgradeAlreadyUpToDate, result.Message)
		assert.Equal(t, classify.UpgradeAlreadyUpToDate, slot.Get())
	})

	t.Run("non-zero exit is a result, not an error", func(t *testing.T) {
		runner := tooltest.NewRunner("ferium").Fail(1, "network error", "upgrade")
		svc, _, _ := newTestService(runner)

		result, err := svc.Upgrade(context.Background())
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, classify.UpgradeFailed, result.Message)
		assert.Contains(t, result.RawOutput, "network error")
	})

	t.Run("launch failure", func(t *testing.T) {
		runner := tooltest.NewRunner("ferium").Error(exec.ErrNotFound, "upgrade")
		svc, slot, _ := newTestService(runner)

		_, err := svc.Upgrade(context.Background())
		assert.ErrorIs(t, err, exec.ErrNotFound)
		assert.Contains(t, slot.Get(), "Failed to execute ferium upgrade")
	})
}

// stubClassifier proves the service only talks to the classifier seam.
type stubClassifier struct{ classify.Text }

func (stubClassifier) Upgrade(o model.Outcome) model.UpgradeResult {
	return model.UpgradeResult{Success: o.ExitSucceeded, Message: "structured", RawOutput: o.Stdout}
}

func TestUpgrade_CustomClassifier(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Succeed(`{"updated":0}`, "upgrade")
	svc, _, _ := newTestService(runner, WithClassifier(stubClassifier{}))

	result, err := svc.Upgrade(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "structured", result.Message)
}

func TestAvailable(t *testing.T) {
	ok := tooltest.NewRunner("ferium").Succeed("", "--version")
	svc, _, _ := newTestService(ok)
	available, err := svc.Available(context.Background())
	require.NoError(t, err)
	assert.True(t, available)

	broken := tooltest.NewRunner("ferium").Fail(101, "panicked", "--version")
	svc, _, _ = newTestService(broken)
	available, err = svc.Available(context.Background())
	require.NoError(t, err)
	assert.False(t, available)

	missing := tooltest.NewRunner("ferium").Error(exec.ErrNotFound, "--version")
	svc, _, _ = newTestService(missing)
	available, err = svc.Available(context.Background())
	assert.False(t, available)
	var launchErr *model.LaunchError
	assert.True(t, errors.As(err, &launchErr))
}

func TestVersion(t *testing.T) {
	runner := tooltest.NewRunner("ferium").Succeed("ferium 4.7.1\n", "--version")
	svc, _, _ := newTestService(runner)

	v, err := svc.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ferium 4.7.1", v)

	failing := tooltest.NewRunner("ferium").Fail(2, "bad flag", "--version")
	svc, _, _ = newTestService(failing)
	_, err = svc.Version(context.Background())
	var exitErr *model.ToolExitFailure
	assert.True(t, errors.As(err, &exitErr))
}
