package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kciter/pegboard-sub000/internal/api"
	"github.com/kciter/pegboard-sub000/pkg/schedule"
)

// serveCommand creates the serve command, which exposes a board over the
// HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen   string
		boardKey string
		autosave time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a board over the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			st, err := c.newStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			eng, err := c.newEngine()
			if err != nil {
				return err
			}
			if boardKey != "" {
				snap, found, err := st.Load(cmd.Context(), boardKey)
				if err != nil {
					return err
				}
				if found {
					if err := eng.Import(snap); err != nil {
						return err
					}
					logger.Info("board loaded", "key", boardKey, "items", len(snap.Items))
				} else {
					logger.Warn("board key not found, starting empty", "key", boardKey)
				}
			}

			addr := listen
			if addr == "" {
				addr = c.config.API.Listen
			}

			handler := api.NewServer(eng, st, logger)
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			if autosave > 0 {
				if boardKey == "" {
					logger.Warn("autosave needs --board, ignoring")
				} else {
					sched := schedule.NewTimerScheduler()
					sched.Every("autosave", autosave, schedule.Normal, 10*time.Second, func(ctx context.Context) error {
						return handler.SaveBoard(ctx, boardKey)
					})
					go func() {
						_ = sched.Run(cmd.Context(), func(res schedule.TaskResult) {
							if res.Err != nil {
								logger.Warn("autosave failed", "err", res.Err)
							}
						})
					}()
					logger.Info("autosave enabled", "key", boardKey, "interval", autosave)
				}
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			logger.Info("listening", "addr", addr)

			select {
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				if autosave > 0 && boardKey != "" {
					if err := handler.SaveBoard(shutdownCtx, boardKey); err != nil {
						logger.Warn("final save failed", "err", err)
					}
				}
				logger.Info("server stopped")
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides config)")
	cmd.Flags().StringVarP(&boardKey, "board", "b", "", "snapshot key to load at startup")
	cmd.Flags().DurationVar(&autosave, "autosave", 0, "save the board at this interval (requires --board)")

	return cmd
}
