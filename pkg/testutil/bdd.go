package testutil

import "testing"

// Given, When and Then nest subtests so scenario output reads as a sentence.
func Given(t *testing.T, context string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("given "+context, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("when "+action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("then "+outcome, fn)
}
