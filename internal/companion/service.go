// Package companion is the orchestration core of ferium-companion.
//
// A Service drives the external mod tool through a tool.Runner, hands the
// captured output to a classify.OutputClassifier, and assembles the typed
// results that the CLI and the TUI render. It is synchronous: exactly one
// tool invocation runs at a time and each call blocks until its
// invocations have finished. Callers that must stay responsive run
// Service methods on a worker goroutine and observe progress through the
// status sink.
package companion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shinji-kodama/ferium-companion/internal/classify"
	"github.com/shinji-kodama/ferium-companion/internal/clipboard"
	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/status"
	"github.com/shinji-kodama/ferium-companion/internal/tool"
)

// timestampLayout formats ExportResult.Timestamp as local HH:MM:SS.
const timestampLayout = "15:04:05"

// Service runs mod operations against the external tool.
type Service struct {
	runner     tool.Runner
	classifier classify.OutputClassifier
	clipboard  clipboard.Writer
	status     status.Sink
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClassifier replaces the default text classifier.
func WithClassifier(c classify.OutputClassifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithClipboard sets the clipboard used by Export.
func WithClipboard(w clipboard.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.clipboard = w
		}
	}
}

// WithStatus sets the sink that receives a status line after every
// completed invocation. A nil sink, including a nil *status.Slot, leaves
// status reporting off.
func WithStatus(sink status.Sink) Option {
	return func(s *Service) {
		if slot, ok := sink.(*status.Slot); ok && slot == nil {
			return
		}
		if sink != nil {
			s.status = sink
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the wall clock used for export timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service around runner. By default it classifies
// ferium's text output, copies exports to the host clipboard, logs
// nothing and reports status nowhere.
func NewService(runner tool.Runner, opts ...Option) *Service {
	s := &Service{
		runner:     runner,
		classifier: classify.Text{},
		clipboard:  clipboard.System{},
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tool returns the name of the external tool the service drives.
func (s *Service) Tool() string {
	return s.runner.Tool()
}

// ImportAll adds every identifier to the tool's active profile.
//
// Blank identifiers are skipped and recorded nowhere. The rest are added
// one at a time, in input order, because the tool keeps its own state file
// and later adds may depend on earlier ones. The tool sees each identifier
// trimmed, while Failed and the name fallback in Processed keep it exactly
// as supplied. A failure of one identifier, including a launch failure,
// never stops the batch. If ctx is cancelled mid-batch, the identifiers
// not yet attempted are recorded as failed so that every non-blank input
// appears in exactly one of Processed or Failed.
func (s *Service) ImportAll(ctx context.Context, identifiers []string) model.ImportResult {
	result := model.ImportResult{
		Processed: []string{},
		Failed:    []string{},
	}

	inputs := make([]string, 0, len(identifiers))
	for _, raw := range identifiers {
		if strings.TrimSpace(raw) != "" {
			inputs = append(inputs, raw)
		}
	}

	log := s.logger.With(zap.String("batch", uuid.NewString()), zap.Int("mods", len(inputs)))
	log.Info("importing mods")

	for i, raw := range inputs {
		if err := ctx.Err(); err != nil {
			log.Warn("import cancelled", zap.Int("remaining", len(inputs)-i), zap.Error(err))
			result.Failed = append(result.Failed, inputs[i:]...)
			s.report(fmt.Sprintf("Import cancelled, %d mods not attempted", len(inputs)-i))
			break
		}

		id := strings.TrimSpace(raw)
		outcome, err := s.runner.Invoke(ctx, "add", id)
		switch {
		case err != nil:
			log.Warn("failed to execute add", zap.String("mod", id), zap.Error(err))
			result.Failed = append(result.Failed, raw)
			s.report(fmt.Sprintf("Failed to execute command for mod '%s': %v", id, err))

		case !outcome.ExitSucceeded:
			detail := outcome.FailureOutput()
			log.Warn("add failed",
				zap.String("mod", id),
				zap.Int("exit_code", outcome.ExitCode),
				zap.String("output", detail))
			result.Failed = append(result.Failed, raw)
			s.report(fmt.Sprintf("Command failed for mod '%s': %s", id, detail))

		default:
			name := raw
			if added, ok := s.classifier.AddedName(outcome.Stdout); ok {
				name = added
			}
			log.Debug("mod added", zap.String("mod", id), zap.String("name", name))
			result.Processed = append(result.Processed, name)
			s.report(fmt.Sprintf("Successfully imported mod: %s", strings.TrimSpace(name)))
		}
	}

	result.Success = len(result.Failed) == 0
	if result.Success {
		result.Message = fmt.Sprintf("✅ Successfully imported %d mods", len(result.Processed))
	} else {
		result.Message = fmt.Sprintf("⚠️ Imported %d mods, %d failed", len(result.Processed), len(result.Failed))
	}
	log.Info("import finished",
		zap.Int("processed", len(result.Processed)),
		zap.Int("failed", len(result.Failed)))
	return result
}

// ListMods runs the tool's list command and returns the parsed mod list.
//
// A launch failure is returned as is; a non-zero exit is returned as
// *model.ToolExitFailure carrying the tool's diagnostic output.
func (s *Service) ListMods(ctx context.Context) ([]string, error) {
	list, err := s.listText(ctx)
	if err != nil {
		return nil, err
	}
	if list == "" {
		return []string{}, nil
	}
	return strings.Split(list, "\n"), nil
}

// CaptureModList runs the list command and returns the result without
// touching the clipboard.
func (s *Service) CaptureModList(ctx context.Context) (model.ExportResult, error) {
	list, err := s.listText(ctx)
	if err != nil {
		return model.ExportResult{}, err
	}
	ts := s.now().Format(timestampLayout)
	s.report(fmt.Sprintf("Captured mods at %s", ts))
	return model.ExportResult{
		Success:   true,
		Message:   fmt.Sprintf("Captured mods at %s", ts),
		ModList:   list,
		Timestamp: ts,
	}, nil
}

// Export captures the installed mod list and copies it to the clipboard.
//
// Tool failures are returned as errors. A clipboard failure is not: the
// result then has Success == false, the clipboard error in Message, and
// the captured ModList, so the caller can still show or save the list.
func (s *Service) Export(ctx context.Context) (model.ExportResult, error) {
	result, err := s.CaptureModList(ctx)
	if err != nil {
		return result, err
	}

	if err := s.clipboard.WriteText(result.ModList); err != nil {
		s.logger.Warn("clipboard write failed", zap.Error(err))
		result.Success = false
		result.Message = capitalize(err.Error())
		s.report(result.Message)
		return result, nil
	}

	result.Message = "📋 Mod list copied to clipboard"
	s.report(fmt.Sprintf("Copied mods at %s", result.Timestamp))
	return result, nil
}

// Upgrade runs the tool's upgrade command and classifies its output.
//
// Only a launch failure is returned as an error. A non-zero exit is an
// UpgradeResult with Success == false and the failure summary.
func (s *Service) Upgrade(ctx context.Context) (model.UpgradeResult, error) {
	s.logger.Info("upgrading mods")
	outcome, err := s.runner.Invoke(ctx, "upgrade")
	if err != nil {
		s.report(fmt.Sprintf("Failed to execute %s upgrade: %v", s.runner.Tool(), err))
		return model.UpgradeResult{}, err
	}

	result := s.classifier.Upgrade(outcome)
	s.logger.Info("upgrade finished",
		zap.Bool("success", result.Success),
		zap.Int("exit_code", outcome.ExitCode))
	s.report(result.Message)
	return result, nil
}

// Available reports whether the tool is installed and runs.
//
// Any successful exit of the version check counts, regardless of what it
// prints. A tool that runs but exits non-zero is reported unavailable with
// a nil error; a tool that cannot be started is reported unavailable with
// the *model.LaunchError that explains why.
func (s *Service) Available(ctx context.Context) (bool, error) {
	outcome, err := s.runner.Invoke(ctx, "--version")
	if err != nil {
		return false, err
	}
	return outcome.ExitSucceeded, nil
}

// Version returns the trimmed output of the tool's version check.
func (s *Service) Version(ctx context.Context) (string, error) {
	outcome, err := s.runner.Invoke(ctx, "--version")
	if err != nil {
		return "", err
	}
	if !outcome.ExitSucceeded {
		return "", s.exitFailure([]string{"--version"}, outcome)
	}
	return strings.TrimSpace(outcome.Stdout), nil
}

func (s *Service) listText(ctx context.Context) (string, error) {
	outcome, err := s.runner.Invoke(ctx, "list")
	if err != nil {
		s.report(fmt.Sprintf("Failed to execute %s: %v", s.runner.Tool(), err))
		return "", err
	}
	if !outcome.ExitSucceeded {
		failure := s.exitFailure([]string{"list"}, outcome)
		s.report(fmt.Sprintf("Command failed: %s", outcome.FailureOutput()))
		return "", failure
	}
	return s.classifier.ModList(outcome.Stdout), nil
}

func (s *Service) exitFailure(args []string, outcome model.Outcome) *model.ToolExitFailure {
	return &model.ToolExitFailure{
		Tool:     s.runner.Tool(),
		Args:     args,
		ExitCode: outcome.ExitCode,
		Output:   outcome.FailureOutput(),
	}
}

func (s *Service) report(message string) {
	if s.status != nil {
		s.status.Set(message)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
