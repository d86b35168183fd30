// Package command implements invertible mutations with undo/redo history
// and atomic multi-command transactions.
//
// Every mutation the engine performs is a [Command]: an operation that can
// execute and exactly invert itself. The [Runner] owns the undo and redo
// stacks; a [Transaction] batches commands so a caller can roll the whole
// group back, or commit it as a single history entry that one Undo reverts.
package command

import (
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// Command is an invertible mutation. Undo must restore the exact state that
// held before Execute.
type Command interface {
	// Name identifies the command kind for history display and logging.
	Name() string
	// Execute applies the mutation.
	Execute() error
	// Undo reverts the mutation. It is only called after a successful
	// Execute.
	Undo() error
}

// Func is a Command built from closures, for mutations too small to deserve
// a named type.
type Func struct {
	Label  string
	Do     func() error
	Revert func() error
}

// Name implements Command.
func (f *Func) Name() string { return f.Label }

// Execute implements Command.
func (f *Func) Execute() error {
	if f.Do == nil {
		return nil
	}
	return f.Do()
}

// Undo implements Command.
func (f *Func) Undo() error {
	if f.Revert == nil {
		return nil
	}
	return f.Revert()
}

// Batch is a compound command: a sequence executed front-to-back and undone
// back-to-front. Execute is atomic: if a member fails, the already-executed
// members are undone before the error is returned.
type Batch struct {
	Label    string
	Commands []Command
}

// Name implements Command.
func (b *Batch) Name() string { return b.Label }

// Execute runs every member in order, rolling back on the first failure.
func (b *Batch) Execute() error {
	for i, cmd := range b.Commands {
		if err := cmd.Execute(); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = b.Commands[j].Undo()
			}
			return errors.Wrap(errors.ErrCodeInternal, err, "batch %q failed at %q", b.Label, cmd.Name())
		}
	}
	return nil
}

// Undo reverts every member in reverse order.
func (b *Batch) Undo() error {
	for i := len(b.Commands) - 1; i >= 0; i-- {
		if err := b.Commands[i].Undo(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "batch %q undo failed at %q", b.Label, b.Commands[i].Name())
		}
	}
	return nil
}
