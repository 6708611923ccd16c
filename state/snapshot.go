package state

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Snapshot is the on-disk form of a ProjectState: the desired schema the
// autodetector diffs migrations against.
type Snapshot struct {
	Models []ModelState `json:"models"`
}

// ToSnapshot flattens the state into a model list sorted by key.
func (s ProjectState) ToSnapshot() Snapshot {
	snap := Snapshot{}
	for _, k := range s.Keys() {
		snap.Models = append(snap.Models, s.Models[k])
	}
	return snap
}

// FromSnapshot builds a ProjectState from a parsed snapshot.
func FromSnapshot(snap Snapshot) ProjectState {
	st := NewProjectState()
	for _, m := range snap.Models {
		st.AddModel(m)
	}
	return st
}

// MarshalSnapshot renders the state as indented snapshot JSON. The output is
// deterministic so snapshots diff cleanly under version control.
func MarshalSnapshot(s ProjectState) ([]byte, error) {
	snap := s.ToSnapshot()
	sort.SliceStable(snap.Models, func(i, j int) bool {
		if snap.Models[i].AppLabel != snap.Models[j].AppLabel {
			return snap.Models[i].AppLabel < snap.Models[j].AppLabel
		}
		return snap.Models[i].Name < snap.Models[j].Name
	})
	return json.MarshalIndent(snap, "", "  ")
}

// UnmarshalSnapshot parses snapshot JSON into a ProjectState.
func UnmarshalSnapshot(data []byte) (ProjectState, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ProjectState{}, fmt.Errorf("parsing snapshot: %w", err)
	}
	return FromSnapshot(snap), nil
}
