// Package cli implements the kgraph command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kgraph/internal/logging"
	"github.com/mesh-intelligence/kgraph/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	verbose   bool
}

var flags rootFlags

// NewRootCmd creates the top-level "kgraph" command with global flags and
// all subcommands registered. Flag state is reset on every call.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}

	root := &cobra.Command{
		Use:   "kgraph",
		Short: "An embeddable, strongly-typed knowledge graph",
		Long: "kgraph stores concepts connected by typed relations, organized into an\n" +
			"inheritance hierarchy of archetypes with reflective meta-archetypes.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Initialize(flags.jsonMode, flags.verbose)
		},
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend: sqlite, badger or memory (default from config.yaml)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Mark(err, errUsage)
	})

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newNodeCmd(),
		newArchetypeCmd(),
		newAttrCmd(),
		newFlagCmd(),
		newIndividualCmd(),
		newMetaCmd(),
		newDataCmd(),
		newDOTCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := execute(root)
	logging.Cleanup()
	os.Exit(report(os.Stderr, err))
}

// execute runs root. Errors cobra raises for an unknown command or a
// missing required flag are marked as usage errors.
func execute(root *cobra.Command) error {
	err := root.Execute()
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "required flag") {
		return errors.Mark(err, errUsage)
	}
	return err
}

// usage marks the errors of a positional argument validator as usage
// errors.
func usage(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.Mark(err, errUsage)
		}
		return nil
	}
}

// report prints err with any hints and returns the exit code for it.
func report(w io.Writer, err error) int {
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
	return exitCode(err)
}

// exitCode classifies err: mistakes in the request are user errors,
// everything else is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.IsAny(err,
		types.ErrNotFound,
		types.ErrAmbiguousName,
		types.ErrInvalidOwner,
		types.ErrInvalidValue,
		types.ErrTypeConstraintViolation,
		types.ErrCyclicInheritance,
		types.ErrBackendEmpty,
		types.ErrBackendUnknown,
		types.ErrSyncStrategyUnknown,
		errUsage):
		return exitUserError
	default:
		return exitSysError
	}
}

// errUsage marks malformed command arguments.
var errUsage = errors.New("usage error")
