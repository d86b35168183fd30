package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/pack"
)

// arrangeCommand creates the arrange command, which repacks a persisted
// board with one of the packing strategies.
func (c *CLI) arrangeCommand() *cobra.Command {
	var (
		strategy string
		dryRun   bool
	)

	names := make([]string, 0, len(pack.Strategies()))
	for _, s := range pack.Strategies() {
		names = append(names, string(s))
	}

	cmd := &cobra.Command{
		Use:   "arrange <key>",
		Short: "Repack a persisted board with a packing strategy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			snap, found, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return errors.New(errors.ErrCodeNotFound, "snapshot %q not found", args[0])
			}

			eng, err := c.newEngine()
			if err != nil {
				return err
			}
			if err := eng.Import(snap); err != nil {
				return err
			}

			prog := newProgress(logger)
			before := eng.Export()
			if err := eng.AutoArrange(pack.Strategy(strategy)); err != nil {
				return err
			}
			after := eng.Export()

			moved := 0
			for i := range after.Items {
				if after.Items[i].Pos() != before.Items[i].Pos() {
					moved++
				}
			}
			prog.done(fmt.Sprintf("Arranged %d items, moved %d", len(after.Items), moved))

			if dryRun {
				printInfo("Dry run, snapshot left unchanged")
				for i := range after.Items {
					if after.Items[i].Pos() != before.Items[i].Pos() {
						printDetail("%s: %s %s %s", after.Items[i].ID, before.Items[i].Pos(), iconArrow, after.Items[i].Pos())
					}
				}
				return nil
			}

			spin := newSpinnerWithContext(cmd.Context(), "Saving snapshot "+args[0])
			spin.Start()
			if err := st.Save(cmd.Context(), args[0], after); err != nil {
				spin.StopWithError(fmt.Sprintf("Save failed: %v", err))
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Saved %q (%s)", args[0], strategy))
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategy, "strategy", "s", string(pack.TopLeft),
		"packing strategy: "+strings.Join(names, ", "))
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the result without saving")

	return cmd
}
