//go:build worlddef

package basic

import (
	"time"

	gd "github.com/cucumber/godog"
)

// LoginWorld drives the login scenarios.
//
// +worlder:world framework=gd
type LoginWorld struct {
	// User and Password are the credentials the scenario submits.
	User, Password string
	LastLogin      time.Time `json:"lastLogin"`
}

// options is plain package state, not a world.
type options struct {
	retries int
}

var _ = gd.ErrPending
