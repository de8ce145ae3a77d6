package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vnkey/internal/inputmethod"
	"vnkey/internal/trie"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Build and inspect PHT3 dictionaries",
}

var (
	buildLang   string
	buildOutput string
)

var dictBuildCmd = &cobra.Command{
	Use:   "build [word-list...]",
	Short: "Build a PHT3 trie from word lists",
	Long: `Build a PHT3 trie from one or more word lists, one word per line.
Blank lines and lines starting with '#' are ignored. With no files the
list is read from standard input.

English lists must hold ASCII letters. Vietnamese lists hold written
words such as "người"; each is stored as every Telex key sequence that
types it.

Example:
  vnkeyctl dict build --lang en -o en.pht words.txt
  vnkeyctl dict build --lang vi -o vi.pht syllables.txt`,
	RunE: runDictBuild,
}

var dictInfoCmd = &cobra.Command{
	Use:   "info <file...>",
	Short: "Show the header of PHT3 files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDictInfo,
}

var dictLookupCmd = &cobra.Command{
	Use:   "lookup <file> <word...>",
	Short: "Check words against a PHT3 file",
	Long: `Check words against a PHT3 file. Words with Vietnamese letters are
looked up by their Telex spellings.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDictLookup,
}

func init() {
	dictBuildCmd.Flags().StringVar(&buildLang, "lang", "en", "word list language (en or vi)")
	dictBuildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output file (required)")
	dictBuildCmd.MarkFlagRequired("output")

	dictCmd.AddCommand(dictBuildCmd, dictInfoCmd, dictLookupCmd)
	rootCmd.AddCommand(dictCmd)
}

func runDictBuild(cmd *cobra.Command, args []string) error {
	var add func(*trie.Builder, io.Reader) (int, int, error)
	switch buildLang {
	case "en":
		add = (*trie.Builder).AddFrom
	case "vi":
		add = addVietnamese
	default:
		return fmt.Errorf("unknown language %q (want en or vi)", buildLang)
	}

	b := trie.NewBuilder()
	var added, skipped int
	readList := func(name string, r io.Reader) error {
		a, s, err := add(b, r)
		added += a
		skipped += s
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	if len(args) == 0 {
		if err := readList("stdin", cmd.InOrStdin()); err != nil {
			return err
		}
	}
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = readList(path, f)
		f.Close()
		if err != nil {
			return err
		}
	}
	if b.Len() == 0 {
		return fmt.Errorf("no words to build")
	}

	out, err := os.Create(buildOutput)
	if err != nil {
		return err
	}
	n, err := b.WriteTo(out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", buildOutput, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Built %s\n", buildOutput)
	fmt.Fprintf(w, "  Words:   %s (%s skipped)\n", humanize.Comma(int64(b.Len())), humanize.Comma(int64(skipped)))
	fmt.Fprintf(w, "  Entries: %s\n", humanize.Comma(int64(added)))
	fmt.Fprintf(w, "  Size:    %s\n", humanize.Bytes(uint64(n)))
	return nil
}

// addVietnamese adds the Telex spellings of each written word in r.
// added counts source words, not spellings.
func addVietnamese(b *trie.Builder, r io.Reader) (added, skipped int, err error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		spellings, err := inputmethod.TelexSpellings(line)
		if err != nil {
			skipped++
			continue
		}
		ok := false
		for _, s := range spellings {
			if b.Add(s) == nil {
				ok = true
			}
		}
		if ok {
			added++
		} else {
			skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return added, skipped, fmt.Errorf("read word list: %w", err)
	}
	return added, skipped, nil
}

func runDictInfo(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	for _, path := range args {
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		d, err := trie.LoadFile(path)

		fmt.Fprintf(w, "%s\n", path)
		fmt.Fprintf(w, "  Size:     %s\n", humanize.Bytes(uint64(fi.Size())))
		fmt.Fprintf(w, "  Modified: %s\n", humanize.Time(fi.ModTime()))
		if err != nil {
			fmt.Fprintf(w, "  Status:   INVALID (%v)\n", err)
			continue
		}
		fmt.Fprintf(w, "  Status:   OK\n")
		fmt.Fprintf(w, "  Words:    %s\n", humanize.Comma(int64(d.WordCount())))
		fmt.Fprintf(w, "  Nodes:    %s\n", humanize.Comma(int64(d.NodeCount())))
	}
	return nil
}

func runDictLookup(cmd *cobra.Command, args []string) error {
	d, err := trie.LoadFile(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, word := range args[1:] {
		keys := []string{strings.ToLower(word)}
		if !isASCII(word) {
			if keys, err = inputmethod.TelexSpellings(word); err != nil {
				fmt.Fprintf(w, "%s\tinvalid (%v)\n", word, err)
				continue
			}
		}
		hit := ""
		for _, k := range keys {
			if d.Contains(k) {
				hit = k
				break
			}
		}
		switch {
		case hit == "":
			fmt.Fprintf(w, "%s\tnot found\n", word)
		case hit != word:
			fmt.Fprintf(w, "%s\tfound (%s)\n", word, hit)
		default:
			fmt.Fprintf(w, "%s\tfound\n", word)
		}
	}
	return nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
