package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shinji-kodama/ferium-companion/internal/status"
)

// Run starts the UI on the terminal and blocks until the user quits or
// ctx is cancelled. Operations still running when the UI exits are
// cancelled.
func Run(ctx context.Context, svc Service, slot *status.Slot, toolName string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, svc, slot, toolName),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
