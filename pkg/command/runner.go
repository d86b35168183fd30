package command

// DefaultHistoryLimit caps the undo stack when no explicit limit is set.
const DefaultHistoryLimit = 200

// Runner executes commands and maintains the undo/redo history.
//
// Pushing a new command after an undo clears the redo stack: history is
// linear, never branching. The Runner is not safe for concurrent use; it
// belongs to a single engine instance.
type Runner struct {
	undo  []Command
	redo  []Command
	limit int

	tx *Transaction // non-nil while a transaction is open
}

// NewRunner creates a runner with the given history limit. A non-positive
// limit falls back to DefaultHistoryLimit.
func NewRunner(limit int) *Runner {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Runner{limit: limit}
}

// Execute runs the command and, on success, pushes it onto the undo stack
// and clears the redo stack. While a transaction is open the command is
// accumulated there instead of entering history directly.
func (r *Runner) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}
	if r.tx != nil {
		r.tx.commands = append(r.tx.commands, cmd)
		return nil
	}
	r.push(cmd)
	return nil
}

// push records an executed command and trims history to the limit.
func (r *Runner) push(cmd Command) {
	r.undo = append(r.undo, cmd)
	r.redo = r.redo[:0]
	if len(r.undo) > r.limit {
		copy(r.undo, r.undo[len(r.undo)-r.limit:])
		r.undo = r.undo[:r.limit]
	}
}

// Undo reverts the most recent command. It reports false when there is
// nothing to undo, when a transaction is open, or when the revert fails.
func (r *Runner) Undo() bool {
	if r.tx != nil || len(r.undo) == 0 {
		return false
	}
	cmd := r.undo[len(r.undo)-1]
	if err := cmd.Undo(); err != nil {
		return false
	}
	r.undo = r.undo[:len(r.undo)-1]
	r.redo = append(r.redo, cmd)
	return true
}

// Redo replays the most recently undone command. It reports false when
// there is nothing to redo, when a transaction is open, or when the replay
// fails.
func (r *Runner) Redo() bool {
	if r.tx != nil || len(r.redo) == 0 {
		return false
	}
	cmd := r.redo[len(r.redo)-1]
	if err := cmd.Execute(); err != nil {
		return false
	}
	r.redo = r.redo[:len(r.redo)-1]
	r.undo = append(r.undo, cmd)
	return true
}

// CanUndo reports whether the undo stack is non-empty.
func (r *Runner) CanUndo() bool { return len(r.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (r *Runner) CanRedo() bool { return len(r.redo) > 0 }

// History returns the names of the undo stack, oldest first.
func (r *Runner) History() []string {
	out := make([]string, len(r.undo))
	for i, cmd := range r.undo {
		out[i] = cmd.Name()
	}
	return out
}

// Clear drops both stacks, e.g. after a snapshot import replaces the state
// the history refers to.
func (r *Runner) Clear() {
	r.undo = nil
	r.redo = nil
}
