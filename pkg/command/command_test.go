package command

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// counter is a trivial mutable state for exercising commands.
type counter struct{ value int }

func addCmd(c *counter, n int) Command {
	return &Func{
		Label:  "add",
		Do:     func() error { c.value += n; return nil },
		Revert: func() error { c.value -= n; return nil },
	}
}

func failCmd() Command {
	return &Func{Label: "fail", Do: func() error { return stderrors.New("boom") }}
}

func TestRunnerExecuteUndoRedo(t *testing.T) {
	c := &counter{}
	r := NewRunner(0)

	for _, n := range []int{1, 2, 3} {
		if err := r.Execute(addCmd(c, n)); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}
	if c.value != 6 {
		t.Fatalf("value = %d, want 6", c.value)
	}

	// Undoing all n commands returns to the exact pre-sequence state.
	for r.Undo() {
	}
	if c.value != 0 {
		t.Errorf("after full undo: value = %d, want 0", c.value)
	}

	// Redoing all n returns to the post-sequence state.
	for r.Redo() {
	}
	if c.value != 6 {
		t.Errorf("after full redo: value = %d, want 6", c.value)
	}
}

func TestRunnerUndoEmpty(t *testing.T) {
	r := NewRunner(0)
	if r.Undo() {
		t.Error("Undo on empty history should report false")
	}
	if r.Redo() {
		t.Error("Redo on empty history should report false")
	}
}

func TestExecuteClearsRedo(t *testing.T) {
	c := &counter{}
	r := NewRunner(0)

	_ = r.Execute(addCmd(c, 1))
	_ = r.Execute(addCmd(c, 2))
	r.Undo()

	if !r.CanRedo() {
		t.Fatal("redo stack should hold the undone command")
	}
	_ = r.Execute(addCmd(c, 5))
	if r.CanRedo() {
		t.Error("a new command after undo must clear the redo stack")
	}
	if c.value != 6 {
		t.Errorf("value = %d, want 6", c.value)
	}
}

func TestExecuteFailureKeepsHistoryClean(t *testing.T) {
	c := &counter{}
	r := NewRunner(0)
	_ = r.Execute(addCmd(c, 1))

	if err := r.Execute(failCmd()); err == nil {
		t.Fatal("expected failure")
	}
	if got := r.History(); !reflect.DeepEqual(got, []string{"add"}) {
		t.Errorf("History = %v, failed command must not enter history", got)
	}
}

func TestHistoryLimit(t *testing.T) {
	c := &counter{}
	r := NewRunner(3)
	for i := 0; i < 5; i++ {
		_ = r.Execute(addCmd(c, 1))
	}

	undone := 0
	for r.Undo() {
		undone++
	}
	if undone != 3 {
		t.Errorf("undid %d commands, want history capped at 3", undone)
	}
	if c.value != 2 {
		t.Errorf("value = %d, want 2 (two trimmed commands survive)", c.value)
	}
}

func TestBatchAtomicExecute(t *testing.T) {
	c := &counter{}
	b := &Batch{Label: "group", Commands: []Command{
		addCmd(c, 1),
		addCmd(c, 2),
		failCmd(),
	}}

	if err := b.Execute(); err == nil {
		t.Fatal("expected failure")
	}
	if c.value != 0 {
		t.Errorf("value = %d, want 0 after rollback of partial batch", c.value)
	}
}

func TestTransactionCommitSingleUndo(t *testing.T) {
	c := &counter{}
	r := NewRunner(0)

	tx, err := r.Begin("bulk add")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	_ = r.Execute(addCmd(c, 1))
	_ = r.Execute(addCmd(c, 2))
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if got := r.History(); !reflect.DeepEqual(got, []string{"bulk add"}) {
		t.Fatalf("History = %v, want one compound entry", got)
	}
	if !r.Undo() || c.value != 0 {
		t.Errorf("one Undo should revert the whole transaction, value = %d", c.value)
	}
}

func TestTransactionRollback(t *testing.T) {
	c := &counter{}
	r := NewRunner(0)

	tx, _ := r.Begin("doomed")
	_ = r.Execute(addCmd(c, 1))
	_ = r.Execute(addCmd(c, 10))
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if c.value != 0 {
		t.Errorf("value = %d, want 0 after rollback", c.value)
	}
	if r.CanUndo() {
		t.Error("rolled-back transaction must not enter history")
	}
}

func TestNestedTransactionRejected(t *testing.T) {
	r := NewRunner(0)
	tx, _ := r.Begin("outer")
	defer func() { _ = tx.Rollback() }()

	if _, err := r.Begin("inner"); !errors.Is(err, errors.ErrCodeNestedTransaction) {
		t.Errorf("nested Begin = %v, want NESTED_TRANSACTION", err)
	}
}

func TestUndoBlockedDuringTransaction(t *testing.T) {
	c := &counter{}
	r := NewRunner(0)
	_ = r.Execute(addCmd(c, 1))

	tx, _ := r.Begin("open")
	if r.Undo() {
		t.Error("Undo must not run while a transaction is open")
	}
	_ = tx.Rollback()
	if !r.Undo() {
		t.Error("Undo should work again after the transaction closes")
	}
}

func TestRunHelper(t *testing.T) {
	c := &counter{}
	r := NewRunner(0)

	err := r.Run("ok", func() error {
		return r.Execute(addCmd(c, 4))
	})
	if err != nil || c.value != 4 {
		t.Fatalf("Run commit: err=%v value=%d", err, c.value)
	}

	sentinel := stderrors.New("abort")
	err = r.Run("aborted", func() error {
		_ = r.Execute(addCmd(c, 100))
		return sentinel
	})
	if !stderrors.Is(err, sentinel) {
		t.Errorf("Run should return the callback error, got %v", err)
	}
	if c.value != 4 {
		t.Errorf("value = %d, want 4 after rollback", c.value)
	}
}
