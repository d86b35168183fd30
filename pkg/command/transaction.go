package command

import (
	"github.com/kciter/pegboard-sub000/pkg/errors"
)

// ErrNestedTransaction is returned by [Runner.Begin] while another
// transaction is still open. Transactions never nest or flatten silently.
var ErrNestedTransaction = errors.New(errors.ErrCodeNestedTransaction,
	"a transaction is already in progress")

// Transaction accumulates the commands executed while it is open so the
// caller can commit them as one atomic history entry or roll them all back
// in reverse order.
type Transaction struct {
	runner   *Runner
	label    string
	commands []Command
	closed   bool
}

// Begin opens a transaction on the runner. Commands executed before Commit
// or Rollback are accumulated instead of entering history individually.
// A second Begin before the first transaction closes fails with
// NESTED_TRANSACTION.
func (r *Runner) Begin(label string) (*Transaction, error) {
	if r.tx != nil {
		return nil, ErrNestedTransaction
	}
	tx := &Transaction{runner: r, label: label}
	r.tx = tx
	return tx, nil
}

// InTransaction reports whether a transaction is currently open.
func (r *Runner) InTransaction() bool { return r.tx != nil }

// Commit closes the transaction and pushes the accumulated commands as a
// single batch onto the undo stack, so one Undo reverts the whole group.
// An empty transaction commits to nothing.
func (tx *Transaction) Commit() error {
	if err := tx.close(); err != nil {
		return err
	}
	if len(tx.commands) == 0 {
		return nil
	}
	tx.runner.push(&Batch{Label: tx.label, Commands: tx.commands})
	return nil
}

// Rollback closes the transaction and undoes every accumulated command in
// reverse order. Nothing enters history.
func (tx *Transaction) Rollback() error {
	if err := tx.close(); err != nil {
		return err
	}
	for i := len(tx.commands) - 1; i >= 0; i-- {
		if err := tx.commands[i].Undo(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err,
				"rollback of %q failed at %q", tx.label, tx.commands[i].Name())
		}
	}
	return nil
}

// close detaches the transaction from its runner exactly once.
func (tx *Transaction) close() error {
	if tx.closed {
		return errors.New(errors.ErrCodeInvalidInput, "transaction %q already closed", tx.label)
	}
	tx.closed = true
	tx.runner.tx = nil
	return nil
}

// Run executes fn inside a transaction: a nil return commits, an error rolls
// back and is returned to the caller.
func (r *Runner) Run(label string, fn func() error) error {
	tx, err := r.Begin(label)
	if err != nil {
		return err
	}
	if err := fn(); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return rbErr
		}
		return err
	}
	return tx.Commit()
}
