package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callscope/internal/output"
	"callscope/internal/structure"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <elf>",
	Short: "Disassemble an ELF file into a JSONL directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger := setup(cmd)
		out, _ := cmd.Flags().GetString("out")

		st, err := structure.FromELF(args[0], logger)
		if err != nil {
			return err
		}
		if err := output.WriteStructure(out, st); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d functions, %d calls, %d instructions)\n",
			out, len(st.Functions()), st.CallCount(), len(st.Instructions()))
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringP("out", "o", "", "Output directory")
	_ = dumpCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(dumpCmd)
}
