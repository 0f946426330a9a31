//go:build worlddef

package basic

// AdminWorld drives the admin console scenarios.
//
// +worlder:world checkConcurrency=true
type AdminWorld struct {
	// PromotedUsers counts promotions performed during the scenario.
	PromotedUsers int
}
