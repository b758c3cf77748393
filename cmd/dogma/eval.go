package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seedwing-io/dogma-engine/internal/dogma/eval"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
)

type evalOptions struct {
	inputPath string
	format    string
}

// newEvalCmd creates the eval subcommand: evaluate a pattern against an
// input document and print its verdict and rationale as JSON.
func newEvalCmd() *cobra.Command {
	opts := &evalOptions{}

	cmd := &cobra.Command{
		Use:   "eval <pattern-id>",
		Short: "Evaluate a compiled pattern against an input document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.inputPath, "input", "-", "input document path, or - for stdin")
	cmd.Flags().StringVar(&opts.format, "format", "json", "input format: json, yaml or toml")

	return cmd
}

func runEval(cmd *cobra.Command, patternID string, opts *evalOptions) error {
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

	format, err := parseFormat(opts.format)
	if err != nil {
		return err
	}

	data, err := readInput(opts.inputPath)
	if err != nil {
		return err
	}
	input, err := value.Decode(format, data)
	if err != nil {
		return fmt.Errorf("dogma: decoding input: %w", err)
	}

	evaluator := eval.New(reg, cfg.World.MaxDepth)
	verdict, output, rat, err := evaluator.Evaluate(cmd.Context(), w, patternID, nil, input)
	if err != nil {
		return fmt.Errorf("dogma: %w", err)
	}

	result := struct {
		Verdict   string            `json:"verdict"`
		Output    any               `json:"output"`
		Rationale renderedRationale `json:"rationale"`
	}{
		Verdict:   verdictString(verdict),
		Output:    renderedValue(output),
		Rationale: renderRationale(rat),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func parseFormat(s string) (value.Format, error) {
	switch s {
	case "json":
		return value.FormatJSON, nil
	case "yaml":
		return value.FormatYAML, nil
	case "toml":
		return value.FormatTOML, nil
	default:
		return 0, fmt.Errorf("dogma: unknown input format %q", s)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
