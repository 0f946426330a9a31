//go:generate go run github.com/scenarium/worlder/cmd/worlder generate

// Package docref is a worked example of an annotated world package: a
// definition file, the generated session plumbing and the godog steps that
// drive it. The suite only runs when BROWSER is set.
package docref

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// InitializeScenario returns the suite initializer. godog calls it for
// every scenario, so each scenario gets a fresh world and, through the
// registered hooks, a fresh browser session.
func InitializeScenario(opts *godog.Options) func(*godog.ScenarioContext) {
	return func(sc *godog.ScenarioContext) {
		world := &AppWorld{}
		world.Register(sc, opts)

		sc.Step(`^I visit "([^"]*)"$`, world.iVisit)
		sc.Step(`^the current URL ends with "([^"]*)"$`, world.currentURLEndsWith)
		sc.Step(`^the world has recorded (\d+) visits?$`, world.hasRecordedVisits)
	}
}

func (w *AppWorld) iVisit(path string) error {
	if err := w.GotoPath(path); err != nil {
		return err
	}
	w.Visits++
	return nil
}

func (w *AppWorld) currentURLEndsWith(suffix string) error {
	url := w.Page().URL()
	if !strings.HasSuffix(url, suffix) {
		return fmt.Errorf("current URL %s does not end with %s", url, suffix)
	}
	return nil
}

func (w *AppWorld) hasRecordedVisits(want int) error {
	if w.Visits != want {
		return fmt.Errorf("recorded %d visits, want %d", w.Visits, want)
	}
	return nil
}
