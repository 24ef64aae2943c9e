package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"callscope/internal/layout"
	"callscope/internal/prefs"
	"callscope/internal/session"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <input>",
	Short: "Expand functions and export the resulting call graph",
	Long: `Expand each --addr (and the entry point with --entry) in order, then write
the requested exports. Addresses that fail are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup(cmd)
		addrs, _ := cmd.Flags().GetStringArray("addr")
		entry, _ := cmd.Flags().GetBool("entry")
		title, _ := cmd.Flags().GetString("title")

		opts := session.Options{
			Prefs:              prefs.NewStore(cfg.PrefsPath),
			DefaultOrientation: cfg.DefaultOrientation(),
			ListingCache:       cfg.ListingCache,
			Title:              title,
			Logger:             logger,
		}
		if cmd.Flags().Changed("orientation") {
			name, _ := cmd.Flags().GetString("orientation")
			o, err := layout.ParseOrientation(name)
			if err != nil {
				return err
			}
			// A one-shot override is not persisted.
			opts.Prefs, opts.DefaultOrientation = nil, o
		}
		if !entry && len(addrs) == 0 {
			return fmt.Errorf("nothing to explore: pass --addr or --entry")
		}

		st, err := loadStructure(args[0], logger)
		if err != nil {
			return err
		}
		s, err := session.New(st, opts)
		if err != nil {
			return err
		}

		failed := 0
		if entry {
			if _, err := s.ExploreEntry(); err != nil {
				logger.Error("explore entry", "err", err)
				failed++
			}
		}
		for _, a := range addrs {
			if _, err := s.Explore(a); err != nil {
				logger.Error("explore", "addr", a, "err", err)
				failed++
			}
		}

		exports := []struct {
			flag string
			save func(string) error
		}{
			{"svg", s.SaveVector},
			{"png", s.SaveRaster},
			{"dot", s.SaveDOT},
			{"summary", s.SaveSummary},
		}
		for _, x := range exports {
			path, _ := cmd.Flags().GetString(x.flag)
			if path == "" {
				continue
			}
			if err := x.save(path); err != nil {
				return err
			}
		}

		stats := s.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "%d nodes, %d edges (%d expanded, %d unresolved), %s\n",
			stats.Nodes, stats.Edges, stats.Expanded, stats.Unresolved, s.Orientation())
		if failed > 0 {
			return fmt.Errorf("%d of %d explorations failed", failed, len(addrs)+boolInt(entry))
		}
		return nil
	},
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func init() {
	exploreCmd.Flags().StringArrayP("addr", "a", nil, "Function start address to expand (repeatable)")
	exploreCmd.Flags().BoolP("entry", "e", false, "Expand the function at the entry point first")
	exploreCmd.Flags().StringP("orientation", "O", "", "HORIZONTAL or VERTICAL (not persisted)")
	exploreCmd.Flags().String("title", "", "Graph title for DOT output")
	exploreCmd.Flags().String("svg", "", "Write the graph as SVG")
	exploreCmd.Flags().String("png", "", "Write the graph as PNG")
	exploreCmd.Flags().String("dot", "", "Write the graph as Graphviz DOT")
	exploreCmd.Flags().String("summary", "", "Write the name-level call summary as DOT")
	rootCmd.AddCommand(exploreCmd)
}
