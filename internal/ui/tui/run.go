package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"vreport/internal/core/ports"
)

// Run shows the terminal UI until the user quits or ctx is done. Snapshots
// published by svc are forwarded to the model.
func Run(ctx context.Context, svc ports.ReportService, activeID string) error {
	m := initialModel(svc.Snapshot(), activeID)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := svc.Subscribe(func(snap ports.Snapshot) {
		p.Send(snapshotMsg(snap))
	})
	defer unsubscribe()

	// Catch a reload that landed between the first snapshot and Subscribe.
	go func() {
		p.Send(snapshotMsg(svc.Snapshot()))
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
