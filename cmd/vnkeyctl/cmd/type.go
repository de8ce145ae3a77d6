package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vnkey/internal/ime"
	"vnkey/internal/session"
	"vnkey/internal/store"
)

var (
	typeMethod string
	typeStyle  string
	typeTrace  bool
	typeStore  bool
)

var typeCmd = &cobra.Command{
	Use:   "type [text...]",
	Short: "Replay keystrokes through the engine",
	Long: `Replay keystrokes through the engine and print the text an editor would
hold afterwards. Each argument is typed as its own session; with no
arguments every line of standard input is.

A trailing space or punctuation ends the last word, which is when the
engine decides whether to restore it as English.

Example:
  vnkeyctl type "vietj nam "
  vnkeyctl type --method vni "vie65t "
  vnkeyctl type --trace "thesis "`,
	RunE: runType,
}

func init() {
	typeCmd.Flags().StringVar(&typeMethod, "method", "", "input method (telex, vni, simple-telex)")
	typeCmd.Flags().StringVar(&typeStyle, "style", "", "tone placement (modern or classical)")
	typeCmd.Flags().BoolVar(&typeTrace, "trace", false, "print the result of every key")
	typeCmd.Flags().BoolVar(&typeStore, "store", true, "use macros from the store")
	rootCmd.AddCommand(typeCmd)
}

func runType(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if typeMethod != "" {
		cfg.Input.Method = typeMethod
	}
	if typeStyle != "" {
		cfg.Input.Style = typeStyle
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx := cmd.Context()
	var st *store.Store
	if typeStore {
		if st, err = openStore(cfg); err != nil {
			return err
		}
		defer st.Close()
	}
	e, _, err := newEngine(ctx, cfg, log, st, nil)
	if err != nil {
		return err
	}

	lines := args
	if len(lines) == 0 {
		sc := bufio.NewScanner(cmd.InOrStdin())
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	for _, line := range lines {
		e.StartNewSession()
		if typeTrace {
			traceLine(cmd, e, line)
			continue
		}
		fmt.Fprintln(w, e.Typist().TypeLine(line))
	}

	if st != nil {
		if err := st.RecordMacroHits(ctx, e.TakeMacroHits()); err != nil {
			log.Warn("record macro hits", "error", err)
		}
	}
	return nil
}

func traceLine(cmd *cobra.Command, e *ime.Engine, line string) {
	w := cmd.OutOrStdout()
	typist := e.Typist()
	for _, k := range append(session.Keys(line), session.Key{Code: session.KeyEnter}) {
		res := typist.Press(k)
		fmt.Fprintf(w, "%-6s %-40s %q\n", keyName(k), res.String(), typist.String())
	}
	fmt.Fprintln(w, strings.Repeat("-", 20))
	fmt.Fprintln(w, strings.TrimSuffix(typist.String(), "\n"))
}

func keyName(k session.Key) string {
	switch k.Code {
	case session.KeySpace:
		return "SPACE"
	case session.KeyTab:
		return "TAB"
	case session.KeyEnter:
		return "ENTER"
	default:
		return string(k.Char)
	}
}
