package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"callscope/internal/colorize"
	"callscope/internal/layout"
	"callscope/internal/prefs"
	"callscope/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session <input>",
	Short: "Explore a binary interactively",
	Long: `Start a line-oriented shell over one binary. Type "help" for commands.
Failed commands are reported and the shell keeps going.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup(cmd)
		st, err := loadStructure(args[0], logger)
		if err != nil {
			return err
		}
		s, err := session.New(st, session.Options{
			Prefs:              prefs.NewStore(cfg.PrefsPath),
			DefaultOrientation: cfg.DefaultOrientation(),
			ListingCache:       cfg.ListingCache,
			Title:              args[0],
			Logger:             logger,
		})
		if err != nil {
			return err
		}
		sh := newShell(s, cmd.OutOrStdout(), !cfg.NoColor && term.IsTerminal(os.Stdout.Fd()))
		return sh.run(cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

const shellHelp = `explore <addr>      expand the function at addr
entry               expand the function at the entry point
list <addr>         print the disassembly of the function at addr
svg <file>          save the graph as SVG
png <file>          save the graph as PNG
dot <file>          save the graph as Graphviz DOT
summary <file>      save the name-level call summary as DOT
orient [h|v]        show or set the layout orientation
clear               remove every node and edge
stats               count nodes and edges
quit                leave the shell`

type shellStyles struct {
	prompt lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	dim    lipgloss.Style
}

func newShellStyles() shellStyles {
	return shellStyles{
		prompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(charmtone.Charple.Hex())),
		ok:     lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Malibu.Hex())),
		err:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color(charmtone.Smoke.Hex())),
	}
}

type shell struct {
	s      *session.Session
	out    io.Writer
	color  bool
	styles shellStyles
}

func newShell(s *session.Session, out io.Writer, color bool) *shell {
	return &shell{s: s, out: out, color: color, styles: newShellStyles()}
}

func (sh *shell) paint(st lipgloss.Style, text string) string {
	if !sh.color {
		return text
	}
	return st.Render(text)
}

func (sh *shell) okf(format string, args ...any) {
	fmt.Fprintln(sh.out, sh.paint(sh.styles.ok, fmt.Sprintf(format, args...)))
}

func (sh *shell) fail(err error) {
	fmt.Fprintln(sh.out, sh.paint(sh.styles.err, "error: "+err.Error()))
}

// run reads commands until quit or end of input.
func (sh *shell) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, sh.paint(sh.styles.prompt, "callscope> "))
		if !sc.Scan() {
			fmt.Fprintln(sh.out)
			return sc.Err()
		}
		if sh.exec(sc.Text()) {
			return nil
		}
	}
}

// exec runs one command line and reports whether the shell should stop.
func (sh *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, arg := fields[0], strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	needArg := func() bool {
		if arg == "" {
			sh.fail(fmt.Errorf("%s needs an argument", name))
			return false
		}
		return true
	}

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(sh.out, sh.paint(sh.styles.dim, shellHelp))
	case "explore", "x":
		if !needArg() {
			break
		}
		res, err := sh.s.Explore(arg)
		if err != nil {
			sh.fail(err)
			break
		}
		sh.okf("expanded %s: +%d nodes, +%d edges", res.Function.DisplayName(), res.NewNodes, res.NewEdges)
	case "entry":
		res, err := sh.s.ExploreEntry()
		if err != nil {
			sh.fail(err)
			break
		}
		sh.okf("expanded %s: +%d nodes, +%d edges", res.Function.DisplayName(), res.NewNodes, res.NewEdges)
	case "list", "l":
		if !needArg() {
			break
		}
		text, err := sh.s.Listing(arg)
		if err != nil {
			sh.fail(err)
			break
		}
		if sh.color {
			if colored, err := colorize.Assembly(text); err == nil {
				text = colored
			}
		}
		fmt.Fprint(sh.out, text)
	case "svg", "png", "dot", "summary":
		if !needArg() {
			break
		}
		save := map[string]func(string) error{
			"svg":     sh.s.SaveVector,
			"png":     sh.s.SaveRaster,
			"dot":     sh.s.SaveDOT,
			"summary": sh.s.SaveSummary,
		}[strings.ToLower(name)]
		if err := save(arg); err != nil {
			sh.fail(err)
			break
		}
		sh.okf("wrote %s", arg)
	case "orient", "o":
		if arg == "" {
			sh.okf("%s", sh.s.Orientation())
			break
		}
		o, err := layout.ParseOrientation(arg)
		if err != nil {
			sh.fail(err)
			break
		}
		if err := sh.s.SetOrientation(o); err != nil {
			sh.fail(err)
		}
		sh.okf("%s", o)
	case "clear":
		sh.s.Clear()
		sh.okf("cleared")
	case "stats":
		st := sh.s.Stats()
		sh.okf("%d nodes, %d edges (%d expanded, %d unresolved), %s",
			st.Nodes, st.Edges, st.Expanded, st.Unresolved, sh.s.Orientation())
	default:
		sh.fail(fmt.Errorf("unknown command %q (try help)", name))
	}
	return false
}
