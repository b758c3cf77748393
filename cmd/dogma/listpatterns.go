package main

import (
	"sort"

	"github.com/spf13/cobra"
)

// newListPatternsCmd creates the list-patterns subcommand.
func newListPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-patterns",
		Short: "List every qualified pattern id in the compiled world",
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
			ids := make([]string, 0, len(w.Patterns))
			for id := range w.Patterns {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				cmd.Println(id)
			}
			return nil
		},
	}
}
