package sim

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/quickopen/pkg/dom"
)

// SampleTicket is a ticket page whose requester email has not rendered yet.
//
//go:embed ticket.html
var SampleTicket string

// SampleRequester is the late-rendering email field for SampleTicket.
//
//go:embed requester.html
var SampleRequester string

// LoadPage parses a saved ticket page. An empty path loads SampleTicket.
func LoadPage(path string) (*dom.Tree, error) {
	if path == "" {
		return dom.ParseString(SampleTicket)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	tree, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", path, err)
	}
	return tree, nil
}

// Run starts the simulator and blocks until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Page == nil {
		return fmt.Errorf("sim: no page to display")
	}
	if cfg.Store == nil {
		return fmt.Errorf("sim: no position store")
	}

	m := newModel(cfg)
	defer m.widget.Close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	debugLog.Infof("starting simulator")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("simulator exited: %w", err)
	}
	debugLog.Infof("simulator stopped")
	return nil
}
