package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"chewingd/internal/store"
)

var phrasesCmd = &cobra.Command{
	Use:   "phrases",
	Short: "Manage learned user phrases",
	Long: `Inspect and edit the phrases chewingd has learned.

The store is shared with a running chewingd-ibus; edits are visible to new
lookups immediately.`,
}

var phrasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learned phrases, most recently used first",
	Args:  cobra.NoArgs,
	RunE:  runPhrasesList,
}

var phrasesAddCmd = &cobra.Command{
	Use:     "add <phrase> <syllable>...",
	Short:   "Teach a phrase with its Zhuyin reading",
	Example: "  chewingctl phrases add 分享 ㄈㄣ ㄒㄧㄤˇ",
	Args:    cobra.MinimumNArgs(2),
	RunE:    runPhrasesAdd,
}

var phrasesRemoveCmd = &cobra.Command{
	Use:     "rm <phrase>",
	Aliases: []string{"remove"},
	Short:   "Forget a phrase under every reading",
	Args:    cobra.ExactArgs(1),
	RunE:    runPhrasesRemove,
}

var listLimit int

func init() {
	phrasesListCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "maximum phrases to show (0 for all)")
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Storage.DBPath())
}

func runPhrasesList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	phrases, err := st.List(listLimit)
	if err != nil {
		return err
	}
	stats, err := st.Stats()
	if err != nil {
		return err
	}
	writePhrases(cmd.OutOrStdout(), phrases)
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d phrase(s), %d use(s)\n", stats.Phrases, stats.TotalUses)
	return nil
}

// writePhrases prints a table padded by display width, so CJK text lines
// up in a terminal.
func writePhrases(w io.Writer, phrases []store.Phrase) {
	textWidth, phonesWidth := runewidth.StringWidth("PHRASE"), runewidth.StringWidth("READING")
	for _, p := range phrases {
		textWidth = max(textWidth, runewidth.StringWidth(p.Text))
		phonesWidth = max(phonesWidth, runewidth.StringWidth(p.Phones))
	}

	fmt.Fprintf(w, "%s  %s  %5s  %s\n",
		runewidth.FillRight("PHRASE", textWidth),
		runewidth.FillRight("READING", phonesWidth),
		"USES", "LAST USED")
	for _, p := range phrases {
		fmt.Fprintf(w, "%s  %s  %5d  %s\n",
			runewidth.FillRight(p.Text, textWidth),
			runewidth.FillRight(p.Phones, phonesWidth),
			p.Frequency, p.UsedAt.Format("2006-01-02 15:04"))
	}
}

func runPhrasesAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	text, phones := args[0], strings.Join(args[1:], " ")
	created, err := st.Add(phones, text)
	if errors.Is(err, store.ErrInvalidPhrase) {
		return fmt.Errorf("%q needs one syllable per character: %w", text, err)
	}
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", text, phones)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already known, use count raised\n", text)
	}
	return nil
}

func runPhrasesRemove(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Remove(args[0])
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", args[0], store.ErrNotFound)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%d reading(s))\n", args[0], n)
	return nil
}
