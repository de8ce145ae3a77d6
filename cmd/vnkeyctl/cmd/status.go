package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vnkey/internal/config"
	"vnkey/internal/store"
	"vnkey/internal/trie"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, dictionaries and store statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, "=== vnkey Status ===")
	fmt.Fprintln(w)

	path := cfgFile
	if path == "" {
		path = config.ConfigPath()
	}
	fmt.Fprintln(w, "Config:")
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "  File:    %s (not found, using defaults)\n", path)
	} else {
		fmt.Fprintf(w, "  File:    %s\n", path)
	}
	fmt.Fprintf(w, "  Method:  %s\n", cfg.Input.Method)
	fmt.Fprintf(w, "  Style:   %s\n", cfg.Input.Style)
	fmt.Fprintf(w, "  Restore: %t\n", cfg.Restore.Enabled)
	fmt.Fprintf(w, "  Macros:  %t\n", cfg.Macros.Enabled)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Dictionaries:")
	dictStatus(w, "English", cfg.Dictionaries.English)
	dictStatus(w, "Vietnamese", cfg.Dictionaries.Vietnamese)
	if fi, err := os.Stat(cfg.Dictionaries.Custom); err != nil {
		fmt.Fprintf(w, "  %-11s %s (none)\n", "Custom", cfg.Dictionaries.Custom)
	} else {
		fmt.Fprintf(w, "  %-11s %s (%s, %s)\n", "Custom", cfg.Dictionaries.Custom,
			humanize.Bytes(uint64(fi.Size())), humanize.Time(fi.ModTime()))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Store:")
	if _, err := os.Stat(cfg.Storage.Path); os.IsNotExist(err) {
		fmt.Fprintf(w, "  %s (not created)\n", cfg.Storage.Path)
		return nil
	}
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(w, "  Error opening store: %v\n", err)
		return nil
	}
	defer st.Close()
	stats, err := st.GetStats(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  Path:             %s\n", cfg.Storage.Path)
	fmt.Fprintf(w, "  Schema:           v%d\n", stats.SchemaVersion)
	fmt.Fprintf(w, "  English words:    %s\n", humanize.Comma(int64(stats.EnglishWords)))
	fmt.Fprintf(w, "  Vietnamese words: %s\n", humanize.Comma(int64(stats.VietnameseWords)))
	fmt.Fprintf(w, "  Macros:           %s\n", humanize.Comma(int64(stats.Macros)))
	return nil
}

func dictStatus(w io.Writer, name, path string) {
	d, err := trie.LoadFile(path)
	if err != nil {
		fmt.Fprintf(w, "  %-11s %s (unavailable: %v)\n", name, path, err)
		return
	}
	fmt.Fprintf(w, "  %-11s %s (%s words)\n", name, path, humanize.Comma(int64(d.WordCount())))
}
