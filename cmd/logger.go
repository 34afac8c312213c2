package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eykd/bundlepatch/internal/logging"
)

type loggerKey struct{}

// initLogger builds the logger from the persistent flags and stores it in
// the command's context.
func initLogger(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	log := logging.New(logging.Options{Verbose: verbose, JSON: logJSON, Writer: cmd.ErrOrStderr()})
	cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, log))
	return nil
}

func syncLogger(cmd *cobra.Command, _ []string) {
	_ = loggerFrom(cmd.Context()).Sync()
}

// loggerFrom returns the logger stored by initLogger, or a no-op logger.
func loggerFrom(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return log
		}
	}
	return zap.NewNop()
}
