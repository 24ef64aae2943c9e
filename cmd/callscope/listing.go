package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"callscope/internal/colorize"
	"callscope/internal/session"
)

var listingCmd = &cobra.Command{
	Use:   "listing <input>",
	Short: "Print the disassembly of a function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup(cmd)
		addr, _ := cmd.Flags().GetString("addr")

		st, err := loadStructure(args[0], logger)
		if err != nil {
			return err
		}
		s, err := session.New(st, session.Options{ListingCache: 1, Logger: logger})
		if err != nil {
			return err
		}
		text, err := s.Listing(addr)
		if err != nil {
			return err
		}

		useColor := !cfg.NoColor && term.IsTerminal(os.Stdout.Fd())
		if cmd.Flags().Changed("color") {
			useColor, _ = cmd.Flags().GetBool("color")
		}
		if useColor {
			if colored, err := colorize.Assembly(text); err == nil {
				text = colored
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	listingCmd.Flags().StringP("addr", "a", "", "Function start address (0x-prefixed for hex)")
	listingCmd.Flags().Bool("color", false, "Force highlighting on or off")
	_ = listingCmd.MarkFlagRequired("addr")
	rootCmd.AddCommand(listingCmd)
}
