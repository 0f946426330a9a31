package basic

// Decoy output file. The scanner must never treat generated files as
// definition files, even when one contains a marker.

// +worlder:world
type GeneratedDecoy struct {
	Ignored bool
}
