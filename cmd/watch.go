package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adalundhe/producticons/core/themes"
)

var watchCmd = &cobra.Command{
	Use:   "watch <theme.json>",
	Short: "Reload a product icon theme whenever it changes",
	Long: `Load a product icon theme, print its style sheet and print it again every
time the theme file changes on disk. Runs until interrupted.

Examples:
  producticons watch ./fluent.json
  producticons watch ./fluent.json -o fluent.css`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchOutput string

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Write the style sheet to a file on every reload")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted. Stopping watcher...")
			cancel()
		case <-ctx.Done():
		}
	}()

	service, err := newService(nil, nil)
	if err != nil {
		return err
	}
	defer service.Close()

	theme, err := themes.FromFile(args[0], true)
	if err != nil {
		return err
	}
	if err := service.Register(theme); err != nil {
		return err
	}

	service.OnActiveChange(func(t *themes.ThemeData) {
		if err := emitStyleSheet(cmd, watchOutput, t.StyleSheet()); err != nil {
			logger.Error("failed to write style sheet", slog.String("error", err.Error()))
		}
	})
	if _, err := service.SetActive(ctx, theme.SettingsID); err != nil {
		return err
	}

	err = service.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
