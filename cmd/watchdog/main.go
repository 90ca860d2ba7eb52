// Command watchdog runs a single request through the supervisor and prints
// its verdict as a pretty-printed JSON document.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/takoyaki65/dsa-watchdog/internal/conf"
	"github.com/takoyaki65/dsa-watchdog/internal/model"
	"github.com/takoyaki65/dsa-watchdog/internal/supervisor"
	"github.com/takoyaki65/dsa-watchdog/pkg/logging"
	"github.com/takoyaki65/dsa-watchdog/pkg/snowflake"
)

var (
	tuningPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "watchdog [request-file]",
	Short:         "Run a sandboxed command under resource limits and report a verdict",
	Args:          cobra.MaximumNArgs(1),
	RunE:          runWatchdog,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&tuningPath, "tuning", "", "optional YAML file tuning ambient timing/sizing constants")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// A request that runs but misbehaves is never an error here: TLE, MLE,
	// OLE, and non-zero child exit codes are all carried inside the printed
	// verdict. RunE returning an error means the supervisor itself could not
	// stand up the child at all, which exits non-zero.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func runWatchdog(cmd *cobra.Command, args []string) error {
	v, err := conf.Load(tuningPath)
	if err != nil {
		return fmt.Errorf("load tuning file: %w", err)
	}

	var levelOverride *zapcore.Level
	if logLevel != "" {
		l := logging.LevelFromString(logLevel)
		levelOverride = &l
	}
	logger, err := logging.NewLogger(v, levelOverride)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	snowflake.Init(v)
	log := zap.L().With(zap.Int64("invocation_id", snowflake.NextInvocationID()))
	zap.ReplaceGlobals(log)

	requestReader, closeReader, err := openRequestSource(args)
	if err != nil {
		log.Error("failed to open request source", zap.Error(err))
		return err
	}
	defer closeReader()

	req, err := model.DecodeRequest(requestReader)
	if err != nil {
		log.Error("failed to decode request", zap.Error(err))
		return err
	}

	tuning := conf.FromViper(v)
	verdict, err := supervisor.Run(req, tuning)
	if err != nil {
		log.Error("supervisor failed to run request", zap.Error(err))
		return err
	}

	if err := verdict.Encode(os.Stdout); err != nil {
		log.Error("failed to encode verdict", zap.Error(err))
		return err
	}
	return nil
}

// openRequestSource resolves the request document: a positional file path
// if given, falling back to stdin.
func openRequestSource(args []string) (*os.File, func(), error) {
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	}
	return os.Stdin, func() {}, nil
}
