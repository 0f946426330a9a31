package meta

import (
	"sort"
	"strings"
)

// Backend is one row of the browser capability table. The generated code
// carries the same table, so supporting a new backend means adding a row
// here and regenerating.
type Backend struct {
	Name               string // value of the BROWSER environment variable
	Family             string // playwright BrowserType: chromium, firefox or webkit
	Channel            string // branded chromium channel, empty for the stock build
	NeedsExplicitSize  bool   // window geometry must be applied to the live page
	MaxSafeConcurrency int    // highest scenario concurrency the backend survives, 0 for unbounded
}

// Backends returns the capability table in stable order.
func Backends() []Backend {
	return []Backend{
		{Name: "chromium", Family: "chromium"},
		{Name: "chrome", Family: "chromium", Channel: "chrome"},
		{Name: "edge", Family: "chromium", Channel: "msedge"},
		{Name: "firefox", Family: "firefox", NeedsExplicitSize: true, MaxSafeConcurrency: 1},
		{Name: "webkit", Family: "webkit"},
	}
}

// BackendNames returns the supported BROWSER values, sorted, for messages.
func BackendNames() string {
	backends := Backends()
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
