package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vnkey/internal/config"
	"vnkey/internal/store"
)

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Manage macros",
	Long: `Manage macros kept in the store. When macros are enabled, typing a macro
key followed by a word break replaces it with the expansion.`,
}

var macroSetCmd = &cobra.Command{
	Use:   "set <key> <expansion...>",
	Short: "Create or replace a macro",
	Example: `  vnkeyctl macro set ko không
  vnkeyctl macro set vn Việt Nam`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMacroSet,
}

var macroListCmd = &cobra.Command{
	Use:   "list",
	Short: "List macros",
	RunE:  runMacroList,
}

var macroRemoveCmd = &cobra.Command{
	Use:   "remove <key...>",
	Short: "Remove macros",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMacroRemove,
}

func init() {
	macroCmd.AddCommand(macroSetCmd, macroListCmd, macroRemoveCmd)
	rootCmd.AddCommand(macroCmd)
}

func runMacroSet(cmd *cobra.Command, args []string) error {
	if strings.ContainsAny(args[0], " \t\n") {
		return fmt.Errorf("macro key %q must be a single word", args[0])
	}
	expansion := strings.Join(args[1:], " ")
	return withStore(func(_ *config.Config, st *store.Store) error {
		if err := st.SetMacro(cmd.Context(), args[0], expansion); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", strings.ToLower(args[0]), expansion)
		return nil
	})
}

func runMacroList(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, st *store.Store) error {
		macros, err := st.Macros(cmd.Context())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !cfg.Macros.Enabled {
			fmt.Fprintln(w, "Macros are disabled in the config")
		}
		if len(macros) == 0 {
			fmt.Fprintln(w, "No macros")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tEXPANSION\tUSED\tUPDATED")
		for _, m := range macros {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Key, m.Expansion,
				humanize.Comma(m.Hits), humanize.Time(time.Unix(0, m.UpdatedAt)))
		}
		return tw.Flush()
	})
}

func runMacroRemove(cmd *cobra.Command, args []string) error {
	return withStore(func(_ *config.Config, st *store.Store) error {
		for _, key := range args {
			err := st.DeleteMacro(cmd.Context(), key)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Not found: %s\n", key)
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", strings.ToLower(key))
		}
		return nil
	})
}
