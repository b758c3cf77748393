package main

import (
	"github.com/spf13/cobra"
)

// newLoadCmd creates the load subcommand, which compiles all configured
// policy sources and reports success or failure without evaluating
// anything — useful in CI to fail a merge on a broken policy change.
func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Compile the configured policy sources and report any errors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			reg, clients, err := buildRegistry(cfg.CoreFuncs)
			if err != nil {
				return err
			}
			defer closeAll(clients)

			w, err := loadWorld(cfg, reg)
			if err != nil {
				return err
			}
			cmd.Printf("ok: %d patterns compiled\n", len(w.Patterns))
			return nil
		},
	}
}
