package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"chim/internal/driver"
	"chim/internal/ui"
)

type analyzeOutcome struct {
	results []driver.UnitResult
	err     error
}

// runAnalyzeDirWithUI drives the batch through a Bubble Tea progress
// view. The analysis runs in a goroutine feeding the event channel; the
// view quits when the channel closes.
func runAnalyzeDirWithUI(ctx context.Context, title, dir string, units []string, opts driver.Options, extra driver.ProgressSink) ([]driver.UnitResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	optsCopy := opts
	sink := driver.ProgressSink(driver.ChannelSink{Ch: events})
	if extra != nil {
		sink = driver.MultiSink{sink, extra}
	}
	optsCopy.Sink = sink

	go func() {
		results, err := driver.AnalyzeDir(ctx, dir, optsCopy)
		outcomeCh <- analyzeOutcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, units, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
