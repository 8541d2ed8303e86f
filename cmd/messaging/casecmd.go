package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-messaging/casing"
	"github.com/spf13/cobra"
)

func newCaseCommand() *cobra.Command {
	var (
		to     string
		file   string
		stops  []string
		indent bool
	)
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Rewrite JSON object keys to snake, camel or pascal case",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := casing.ParseCase(to)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			out, err := casing.TransformJSON(bytes.TrimSpace(raw), target, casing.WithStopPaths(stops...))
			if err != nil {
				return fmt.Errorf("case: %w", err)
			}
			if indent {
				var buf bytes.Buffer
				if err := json.Indent(&buf, out, "", "  "); err != nil {
					return fmt.Errorf("case: %w", err)
				}
				out = buf.Bytes()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "snake", "Target case: snake, camel or pascal")
	cmd.Flags().StringVar(&file, "file", "", "JSON file (defaults to stdin)")
	cmd.Flags().StringSliceVar(&stops, "stop", nil, "Dotted key paths whose values are left untouched")
	cmd.Flags().BoolVar(&indent, "indent", false, "Pretty print the output")
	return cmd
}
