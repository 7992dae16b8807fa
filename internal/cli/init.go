package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize kgraph storage",
		Long: "Create the configuration and data directories, write config.yaml if it is\n" +
			"missing, and seed the bootstrap archetypes.",
		Args: usage(cobra.NoArgs),
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, configDir, err := resolveConfig()
	if err != nil {
		return err
	}
	written, err := writeConfigIfMissing(configDir, cfg)
	if err != nil {
		return err
	}

	k, closeFn, err := openKBWith(cfg)
	if err != nil {
		return err
	}
	size, err := k.Size()
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if flags.jsonMode {
		return printJSON(cmd, map[string]any{
			"config_dir":     configDir,
			"config_written": written,
			"backend":        cfg.Backend,
			"data_dir":       cfg.DataDir,
			"nodes":          size,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "kgraph initialized (%s backend, %d nodes) in %s\n", cfg.Backend, size, cfg.DataDir)
	return nil
}
