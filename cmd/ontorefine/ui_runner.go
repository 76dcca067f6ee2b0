package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ontorefine/internal/driver"
	"ontorefine/internal/ui"
)

type runOutcome struct {
	result *driver.Result
	err    error
}

// executeWithUI runs plan while a Bubble Tea view renders its progress.
func executeWithUI(ctx context.Context, plan *driver.Plan) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		plan.Options.Progress = driver.ChannelSink{Ch: events}
		res, err := plan.Execute(ctx)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("refine "+plan.Options.Name, plan.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// держим канал открытым для писателя, пока прогон не завершится
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
