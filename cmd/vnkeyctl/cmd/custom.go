package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vnkey/internal/config"
	"vnkey/internal/customdict"
	"vnkey/internal/store"
)

var customCmd = &cobra.Command{
	Use:   "custom",
	Short: "Manage custom English and Vietnamese words",
	Long: `Manage the custom words kept in the store. Custom Vietnamese words are
never restored; custom English words always are.

The engine reads custom words from the custom dictionary file, so run
'vnkeyctl custom export' after editing to publish the changes. A running
engine watching its dictionaries picks the new file up.`,
}

var customAddCmd = &cobra.Command{
	Use:   "add <en|vi> <word...>",
	Short: "Add custom words",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCustomAdd,
}

var customRemoveCmd = &cobra.Command{
	Use:   "remove <en|vi> <word...>",
	Short: "Remove custom words",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runCustomRemove,
}

var customKind string

var customListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom words",
	RunE:  runCustomList,
}

var customExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the custom dictionary file",
	Long: `Write the custom words as the JSON document the engine loads. The file
defaults to dictionaries.custom from the config; "-" writes to standard
output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCustomExport,
}

var customImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add the words of a custom dictionary file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomImport,
}

func init() {
	customListCmd.Flags().StringVar(&customKind, "kind", "", "only list en or vi words")
	customCmd.AddCommand(customAddCmd, customRemoveCmd, customListCmd, customExportCmd, customImportCmd)
	rootCmd.AddCommand(customCmd)
}

// withStore loads the config, opens the store and runs fn.
func withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(cfg, st)
}

func parseKind(s string) (customdict.Kind, error) {
	kind, ok := customdict.ParseKind(s)
	if !ok {
		return "", fmt.Errorf("unknown word type %q (want en or vi)", s)
	}
	return kind, nil
}

func runCustomAdd(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	return withStore(func(_ *config.Config, st *store.Store) error {
		for _, word := range args[1:] {
			if err := st.AddWord(cmd.Context(), kind, word); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", customdict.Normalize(word), kind)
		}
		return nil
	})
}

func runCustomRemove(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	return withStore(func(_ *config.Config, st *store.Store) error {
		for _, word := range args[1:] {
			err := st.RemoveWord(cmd.Context(), kind, word)
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Not found: %s (%s)\n", word, kind)
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", customdict.Normalize(word), kind)
		}
		return nil
	})
}

func runCustomList(cmd *cobra.Command, args []string) error {
	var kind customdict.Kind
	if customKind != "" {
		k, err := parseKind(customKind)
		if err != nil {
			return err
		}
		kind = k
	}
	return withStore(func(_ *config.Config, st *store.Store) error {
		words, err := st.Words(cmd.Context(), kind)
		if err != nil {
			return err
		}
		if len(words) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No custom words")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WORD\tTYPE\tADDED")
		for _, w := range words {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", w.Word, w.Kind, humanize.Time(time.Unix(0, w.AddedAt)))
		}
		return tw.Flush()
	})
}

func runCustomExport(cmd *cobra.Command, args []string) error {
	return withStore(func(cfg *config.Config, st *store.Store) error {
		data, err := st.ExportCustomDictionary(cmd.Context())
		if err != nil {
			return err
		}
		path := cfg.Dictionaries.Custom
		if len(args) == 1 {
			path = args[0]
		}
		if path == "-" {
			_, err := cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("write custom dictionary: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s (%s)\n", path, humanize.Bytes(uint64(len(data))))
		return nil
	})
}

func runCustomImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return withStore(func(_ *config.Config, st *store.Store) error {
		n, err := st.ImportCustomDictionary(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words\n", n)
		return nil
	})
}
