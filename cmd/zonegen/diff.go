package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var diffAgainst string

func newDiffCmd() *cobra.Command {
	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the compiled commands with a saved command list",
		Args:  cobra.NoArgs,
		RunE:  runDiff,
	}
	diffCmd.Flags().StringVar(&diffAgainst, "against", "", "Previously saved command list (required)")
	diffCmd.MarkFlagRequired("against")
	return diffCmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	logger := setupLogger(logLevel, logFile).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	saved, err := os.ReadFile(diffAgainst)
	if err != nil {
		slog.Error("Failed to read saved commands", "path", diffAgainst, "error", err)
		return err
	}

	result, err := compilePolicy(logger)
	if err != nil {
		return err
	}

	text, err := diffCommands(string(saved), result.Commands, diffAgainst)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes detected.")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

func diffCommands(saved string, commands []string, savedName string) (string, error) {
	compiled := strings.Join(commands, "\n")
	if len(commands) > 0 {
		compiled += "\n"
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(saved),
		B:        difflib.SplitLines(compiled),
		FromFile: savedName,
		ToFile:   "compiled",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}
