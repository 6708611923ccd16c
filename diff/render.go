package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/satishbabariya/migrago/state"
)

// Unified renders a unified text diff between two project states for review
// in the terminal. Both sides serialize to deterministic snapshot JSON, so
// an empty string means the states are identical.
func Unified(from, to state.ProjectState, fromLabel, toLabel string) (string, error) {
	fromJSON, err := state.MarshalSnapshot(from)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", fromLabel, err)
	}
	toJSON, err := state.MarshalSnapshot(to)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", toLabel, err)
	}
	if string(fromJSON) == string(toJSON) {
		return "", nil
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(fromJSON) + "\n"),
		B:        difflib.SplitLines(string(toJSON) + "\n"),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  3,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text, "\n"), nil
}
