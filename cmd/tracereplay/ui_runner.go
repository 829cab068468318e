package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tracereplay/internal/replay"
	"tracereplay/internal/runner"
	"tracereplay/internal/ui"
)

type runOutcome struct {
	results []runner.FileResult
	err     error
	panic   any
}

// runReplayWithUI runs req while a progress view renders its events. The
// terminal is in raw mode meanwhile, so ctrl+c reaches the view as a key and
// the view cancels ctx.
func runReplayWithUI(ctx context.Context, title string, req runner.Request) ([]runner.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan replay.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		var out runOutcome
		defer func() {
			out.panic = recover()
			close(events)
			outcomeCh <- out
		}()
		reqCopy := req
		reqCopy.Progress = replay.ChannelSink{Ch: events}
		out.results, out.err = runner.Run(ctx, reqCopy)
	}()

	model := ui.NewProgressModel(title, req.Files, events, cancel)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		cancel()
	}
	// the view may quit before the runner closes events (a second ctrl+c or a
	// UI error); keep draining so the runner never blocks on a full channel
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if outcome.panic != nil {
		panic(outcome.panic)
	}
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
