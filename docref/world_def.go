//go:build worlddef

package docref

// AppWorld carries the state one scenario accumulates while it drives the
// application under test.
//
// +worlder:world framework=github.com/cucumber/godog client=github.com/playwright-community/playwright-go checkConcurrency=true docs=true
type AppWorld struct {
	// Visits counts the pages the scenario has opened.
	Visits int
}
