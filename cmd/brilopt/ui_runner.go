package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"brilopt/internal/pipeline"
	"brilopt/internal/ui"
)

type optOutcome struct {
	result pipeline.Result
	err    error
}

func runOptWithUI(ctx context.Context, title string, req *pipeline.Request) (pipeline.Result, error) {
	if req == nil || req.Program == nil {
		return pipeline.Result{}, fmt.Errorf("missing optimization request")
	}
	funcs := make([]string, len(req.Program.Functions))
	for i, fn := range req.Program.Functions {
		funcs[i] = fn.Name
	}

	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan optOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, &reqCopy)
		outcomeCh <- optOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, funcs, req.Passes, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Keep the pipeline from blocking on a view that is gone.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
