package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"callscope/internal/config"
	"callscope/internal/logging"
	"callscope/internal/structure"
)

var rootCmd = &cobra.Command{
	Use:   "callscope",
	Short: "Interactive call graph explorer for ARM64 binaries",
	Long: `Callscope grows a call graph from the functions you pick, one expansion at a
time, and exports it as SVG, PNG or Graphviz DOT.

<input> is an ARM64 ELF file or a directory written by "callscope dump".`,
	Example: `
# Expand the entry point and two functions, write an SVG
callscope explore ./app --entry --addr 0x4010 --addr 0x4200 --svg app.svg

# Print the disassembly of one function
callscope listing ./app --addr 0x4010

# Interactive shell
callscope session ./app
  `,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug logging")
}

// setup resolves the configuration and the logger of a command.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger) {
	cfg := config.Load()
	debug, _ := cmd.Flags().GetBool("debug")
	return cfg, logging.NewStderr(cfg.LogOptions(debug))
}

// loadStructure opens input as a dump directory or an ELF file.
func loadStructure(input string, logger *log.Logger) (*structure.Structure, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		st, err := structure.LoadDir(input)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", input, err)
		}
		return st, nil
	}
	return structure.FromELF(input, logger)
}

func Execute() {
	// Bypass fang when output is piped.
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
