// Command toolcore-demo exercises the sandboxed shell execution core
// directly, with no LLM in the loop — a cobra CLI harness in the style of
// opal-lang-opal/runtime/cli/harness.go, generalized from a generated-
// command dispatcher to a fixed tool-name dispatcher.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lowkaihon/toolcore/config"
	"github.com/lowkaihon/toolcore/runtime"
	"github.com/lowkaihon/toolcore/tools"
)

func main() {
	var workDir string
	var jsonInput string

	root := &cobra.Command{
		Use:     "toolcore-demo",
		Short:   "Drive the sandboxed shell execution core's tool surface directly",
		Version: "0.1.0",
	}
	root.PersistentFlags().StringVar(&workDir, "workdir", ".", "workspace root")

	registry := tools.NewRegistry()

	call := &cobra.Command{
		Use:   "call <tool-name>",
		Short: "Invoke a tool by name with a JSON input payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd.Context(), registry, workDir, args[0], jsonInput)
		},
	}
	call.Flags().StringVar(&jsonInput, "input", "{}", "JSON input for the tool")
	root.AddCommand(call)

	list := &cobra.Command{
		Use:   "list-tools",
		Short: "List the fixed tool surface with each tool's description",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range registry.Definitions() {
				fmt.Printf("%s — %s\n", d.Name, d.Description)
			}
			return nil
		},
	}
	root.AddCommand(list)

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("toolcore-demo: fatal")
		os.Exit(1)
	}
}

func runCall(ctx context.Context, registry *tools.Registry, workDir, name, jsonInput string) error {
	abs, err := resolveWorkDir(workDir)
	if err != nil {
		return err
	}

	cfg, err := config.ToolConfiguration{
		Cwd:     abs,
		Runtime: runtime.NewLocal(logrus.NewEntry(logrus.StandardLogger())),
	}.WithDefaults()
	if err != nil {
		return fmt.Errorf("default config: %w", err)
	}

	out, err := registry.Execute(ctx, cfg, name, json.RawMessage(jsonInput))
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func resolveWorkDir(workDir string) (string, error) {
	return filepath.Abs(workDir)
}
