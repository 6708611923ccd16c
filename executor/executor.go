// Package executor plans migration runs and executes them, either as pure
// SQL collection or against a live database.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/history"
	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/sqlgen"
	"github.com/satishbabariya/migrago/state"
)

var (
	ErrTargetNotFound    = errors.New("target migration not found in graph")
	ErrOperationsMissing = errors.New("operations for migration not found")
)

// Direction of one plan step.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Step is one migration applied or reverted.
type Step struct {
	Migration graph.Key
	Direction Direction
}

// Plan is an ordered list of steps.
type Plan struct {
	Steps []Step
}

func (p Plan) IsEmpty() bool { return len(p.Steps) == 0 }

// Executor runs plans through one schema editor and one recorder. The
// recorder carries applied state across calls; load it from the database
// before planning against a live system.
type Executor struct {
	editor   sqlgen.Editor
	recorder *history.Recorder
}

func New(editor sqlgen.Editor, recorder *history.Recorder) *Executor {
	return &Executor{editor: editor, recorder: recorder}
}

func (e *Executor) Recorder() *history.Recorder { return e.recorder }

// MakePlan builds the step list for a target. A nil target applies every
// unapplied migration in dependency order. A concrete target migrates the
// target's app forward up to it and rolls back applied same-app migrations
// past it; other apps are never touched.
func (e *Executor) MakePlan(g *graph.Graph, target *graph.Key) (Plan, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return Plan{}, err
	}

	var plan Plan
	if target == nil {
		for _, key := range order {
			if !e.recorder.IsApplied(key) {
				plan.Steps = append(plan.Steps, Step{Migration: key, Direction: Forward})
			}
		}
		return plan, nil
	}

	if !g.Contains(*target) {
		return Plan{}, fmt.Errorf("%w: %s", ErrTargetNotFound, *target)
	}

	targetPos := -1
	for i, key := range order {
		if key == *target {
			targetPos = i
			break
		}
	}
	if targetPos < 0 {
		return Plan{}, fmt.Errorf("%w: %s", ErrTargetNotFound, *target)
	}

	type positioned struct {
		globalPos int
		key       graph.Key
	}
	var appMigrations []positioned
	targetAppPos := -1
	for i, key := range order {
		if key.App != target.App {
			continue
		}
		if key == *target {
			targetAppPos = len(appMigrations)
		}
		appMigrations = append(appMigrations, positioned{globalPos: i, key: key})
	}

	for _, m := range appMigrations {
		if m.globalPos <= targetPos && !e.recorder.IsApplied(m.key) {
			plan.Steps = append(plan.Steps, Step{Migration: m.key, Direction: Forward})
		}
	}
	for i := len(appMigrations) - 1; i >= 0; i-- {
		if i > targetAppPos && e.recorder.IsApplied(appMigrations[i].key) {
			plan.Steps = append(plan.Steps, Step{Migration: appMigrations[i].key, Direction: Backward})
		}
	}
	return plan, nil
}

// stepSQL renders one step's statements, mutating the running state for
// forward steps. The pre-step state is snapshotted once so every operation
// in the step sees the same from state.
func (e *Executor) stepSQL(step Step, ops []operation.Operation, running *state.ProjectState) ([]string, error) {
	fromState := running.Clone()
	var sqls []string

	if step.Direction == Backward {
		for i := len(ops) - 1; i >= 0; i-- {
			sql, err := ops[i].DatabaseBackwards(step.Migration.App, e.editor, &fromState, running)
			if err != nil {
				return nil, err
			}
			sqls = append(sqls, sql...)
		}
		return sqls, nil
	}

	for _, op := range ops {
		op.StateForwards(step.Migration.App, running)
		sql, err := op.DatabaseForwards(step.Migration.App, e.editor, &fromState, running)
		if err != nil {
			return nil, err
		}
		sqls = append(sqls, sql...)
	}
	return sqls, nil
}

// ExecutePlan renders the whole plan's SQL without touching a database. The
// recorder is still updated per completed step so successive plans see the
// result of this one.
func (e *Executor) ExecutePlan(plan Plan, ops map[graph.Key][]operation.Operation, initialState state.ProjectState) ([]string, error) {
	var allSQL []string
	running := initialState.Clone()

	for _, step := range plan.Steps {
		stepOps, ok := ops[step.Migration]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOperationsMissing, step.Migration)
		}
		sqls, err := e.stepSQL(step, stepOps, &running)
		if err != nil {
			return nil, err
		}
		allSQL = append(allSQL, sqls...)

		if step.Direction == Backward {
			e.recorder.Unapply(step.Migration)
		} else {
			e.recorder.Apply(step.Migration)
		}
	}
	return allSQL, nil
}

// ExecuteAgainstDB runs the plan on a live database. With fake set, SQL is
// rendered and recorded but not executed. Recorder and history-table updates
// happen only after every statement of a step succeeded, so a mid-step
// failure leaves the migration unrecorded.
func (e *Executor) ExecuteAgainstDB(ctx context.Context, plan Plan, ops map[graph.Key][]operation.Operation, initialState state.ProjectState, backend history.Backend, fake bool) ([]string, error) {
	if err := e.recorder.EnsureTable(ctx, backend); err != nil {
		return nil, err
	}

	var allSQL []string
	running := initialState.Clone()

	for _, step := range plan.Steps {
		stepOps, ok := ops[step.Migration]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrOperationsMissing, step.Migration)
		}
		stepSQL, err := e.stepSQL(step, stepOps, &running)
		if err != nil {
			return nil, err
		}

		if !fake {
			for _, sql := range stepSQL {
				// advisory statements (SQLite recreation hints) are not
				// executable
				if strings.HasPrefix(sql, "--") {
					continue
				}
				if err := backend.Execute(ctx, sql); err != nil {
					return nil, fmt.Errorf("applying %s: %w", step.Migration, err)
				}
			}
		}
		allSQL = append(allSQL, stepSQL...)

		if step.Direction == Backward {
			e.recorder.Unapply(step.Migration)
			if err := e.recorder.UnrecordFromDB(ctx, backend, step.Migration); err != nil {
				return nil, err
			}
		} else {
			e.recorder.Apply(step.Migration)
			if err := e.recorder.RecordToDB(ctx, backend, step.Migration); err != nil {
				return nil, err
			}
		}
	}
	return allSQL, nil
}

// StateAfter replays migrations' state changes in the given order, producing
// the schema state the migrations describe.
func StateAfter(order []graph.Key, ops map[graph.Key][]operation.Operation) state.ProjectState {
	st := state.NewProjectState()
	for _, key := range order {
		for _, op := range ops[key] {
			op.StateForwards(key.App, &st)
		}
	}
	return st
}
