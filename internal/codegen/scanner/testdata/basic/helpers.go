package basic

// Shared step helpers live here; nothing in this file declares a world.

func retryBudget() int {
	return 3
}
