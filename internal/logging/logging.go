// Package logging holds the process-wide zap logger used by the kgraph CLI
// and the storage backends.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger. It discards everything until Initialize
	// is called.
	Logger *zap.SugaredLogger
	// JSONOutput records whether Initialize selected JSON encoding.
	JSONOutput bool
)

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces the global logger. Log lines go to stderr so command
// output on stdout stays machine-readable. verbose lowers the level to debug.
func Initialize(jsonOutput, verbose bool) error {
	JSONOutput = jsonOutput

	level := zap.WarnLevel
	if verbose {
		level = zap.DebugLevel
	}

	var zapLogger *zap.Logger
	var err error
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		zapLogger, err = config.Build()
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = ""
		zapLogger = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			level,
		))
	}
	if err != nil {
		return err
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Named returns a child of the global logger for one component.
func Named(component string) *zap.SugaredLogger {
	return Logger.Named(component)
}

// Cleanup flushes buffered log entries.
func Cleanup() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
