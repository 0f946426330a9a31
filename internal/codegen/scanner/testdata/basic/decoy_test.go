package basic

// Test files cannot declare worlds; this marker must be ignored.

// +worlder:world
type TestFileDecoy struct {
	Ignored bool
}
