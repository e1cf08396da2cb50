package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/n4lint/internal/model"
	"github.com/ppiankov/n4lint/internal/suggest"
)

var suggestJSON bool

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <phrase>",
	Short: "Suggest vocabulary arrows for a phrase",
	Long: `Suggest ranks vocabulary arrows for a phrase: synonyms first (phrases
declared on the same SSTconfig line), then keyword overlap, then substring
matches. Results are grouped by semantic category.

Example:
  n4lint suggest "similar to"
  n4lint suggest "(brings about)" --limit 10
  n4lint suggest "is part of" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().IntVar(&limit, "limit", 0, "max suggestions (default from config)")
	suggestCmd.Flags().StringArrayVar(&sources, "source", nil, "vocabulary source (repeatable)")
	suggestCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch of remote sources)")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "print suggestions as JSON")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	phrase := strings.Join(args, " ")
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	a, err := newApp(ctx, appOptions{Sources: sources, Limit: limit, NoCache: noCache})
	if err != nil {
		return err
	}

	v := a.store.Current()
	suggestions := a.pipeline.Engine().SuggestPhrase(phrase, v, 0)

	if suggestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	}

	if cat, ok := v.Lookup(phrase); ok {
		fmt.Printf("(%s) is a valid %s arrow\n\n", model.NormalizePhrase(phrase), cat.Label())
	}
	if len(suggestions) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}

	for _, g := range suggest.Group(suggestions) {
		fmt.Printf("%s (%s)\n", g.Label, g.Category)
		for _, s := range g.Suggestions {
			fmt.Printf("  (%s)  [%s]\n", s.Text, s.Tier)
		}
		fmt.Println()
	}
	return nil
}
