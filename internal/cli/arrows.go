package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/n4lint/internal/model"
)

var (
	arrowCategories []string
	showSynonyms    bool
	showProvenance  bool
)

// arrowsCmd represents the arrows command
var arrowsCmd = &cobra.Command{
	Use:   "arrows",
	Short: "List the loaded arrow vocabulary",
	Long: `Arrows prints every phrase in the loaded vocabulary in load order.

Example:
  n4lint arrows
  n4lint arrows --category LT-1 --synonyms
  n4lint arrows --source ./SSTconfig --provenance`,
	Args: cobra.NoArgs,
	RunE: runArrows,
}

func init() {
	rootCmd.AddCommand(arrowsCmd)

	arrowsCmd.Flags().StringSliceVar(&arrowCategories, "category", nil, "only list these categories (e.g. NR-0,LT-1,special)")
	arrowsCmd.Flags().BoolVar(&showSynonyms, "synonyms", false, "show phrases declared on the same source line")
	arrowsCmd.Flags().BoolVar(&showProvenance, "provenance", false, "show the source and line each phrase came from")
	arrowsCmd.Flags().StringArrayVar(&sources, "source", nil, "vocabulary source (repeatable)")
	arrowsCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch of remote sources)")
}

func runArrows(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	a, err := newApp(ctx, appOptions{Sources: sources, NoCache: noCache})
	if err != nil {
		return err
	}
	v := a.store.Current()

	cats := make([]model.Category, 0, len(arrowCategories))
	for _, c := range arrowCategories {
		cats = append(cats, model.Category(strings.TrimSpace(c)))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range v.AllPhrases(cats...) {
		fmt.Fprintf(w, "%s\t(%s)", p.Category, p.Text)
		if showSynonyms {
			var names []string
			for _, s := range v.Synonyms(p.Text) {
				names = append(names, "("+s.Text+")")
			}
			fmt.Fprintf(w, "\t%s", strings.Join(names, " "))
		}
		if showProvenance {
			fmt.Fprintf(w, "\t%s\t%s", p.Source, p.Line)
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write arrows: %w", err)
	}

	if verbose {
		stats := v.Stats()
		fmt.Fprintf(os.Stderr, "\n%d phrases (v%d, fingerprint %s)\n", stats.Phrases, v.Version(), v.Fingerprint())
		for _, c := range v.Categories() {
			fmt.Fprintf(os.Stderr, "  %-24s %d\n", c.Label(), stats.PerCategory[c])
		}
	}
	return nil
}
