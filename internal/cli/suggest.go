package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/normalia/internal/session"
	"github.com/ppiankov/normalia/internal/suggest"
)

const suggestContextTokens = 5

var (
	suggestFirst int
	suggestLast  int
	suggestMax   int
	suggestJSON  bool
)

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <doc>",
	Short: "Ask the suggestion service for candidates for a token range",
	Long: `Suggest selects [first, last] the way clicks would, then asks the
configured external service for replacement candidates. Nothing is
written: pick a candidate and pass it to 'normalia correct'.

Requires suggest.provider (openai) and an API key (OPENAI_API_KEY).

Example:
  normalia suggest 12 --first 3
  normalia suggest 12 --first 3 --last 4 --max 3`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().IntVar(&suggestFirst, "first", -1, "first selected position")
	suggestCmd.Flags().IntVar(&suggestLast, "last", -1, "last selected position (default: --first)")
	suggestCmd.Flags().IntVar(&suggestMax, "max", suggest.DefaultMaxCandidates, "maximum number of candidates")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "print JSON")
	_ = suggestCmd.MarkFlagRequired("first")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := suggest.NewProvider(cfg.Suggest)
	if err != nil {
		return err
	}
	if provider == nil {
		return fmt.Errorf("no suggestion provider configured (set suggest.provider)")
	}

	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), cfg, gw, id, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	req, err := suggestRequest(s, suggestFirst, suggestLast, suggestMax)
	if err != nil {
		return err
	}

	resp, err := provider.Suggest(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}

	if suggestJSON {
		return writeJSON(cmd.OutOrStdout(), resp)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Selection: %q\n", req.Text)
	if len(req.Known) > 0 {
		fmt.Fprintf(out, "Document candidates: %s\n", strings.Join(req.Known, ", "))
	}
	if len(resp.Candidates) == 0 {
		fmt.Fprintln(out, "No new candidates")
		return nil
	}
	fmt.Fprintln(out, "Suggested:")
	for i, c := range resp.Candidates {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c)
	}
	return nil
}

// suggestRequest selects [first, last] and describes it with a few tokens
// of surrounding context
func suggestRequest(s *session.Session, first, last, maxCandidates int) (suggest.Request, error) {
	if last < 0 {
		last = first
	}
	if _, err := s.Click(first, false); err != nil {
		return suggest.Request{}, err
	}
	if last != first {
		if _, err := s.Click(last, true); err != nil {
			return suggest.Request{}, err
		}
	}

	r := s.Selection().Range
	store := s.Tokens()
	req := suggest.Request{Text: s.SelectedText(), Max: maxCandidates}
	if cands, single := s.SelectionCandidates(); single {
		req.Known = cands
	}

	if r.Start > 0 {
		from := r.Start - suggestContextTokens
		if from < 0 {
			from = 0
		}
		prev, _ := store.At(r.Start - 1)
		req.Before = store.Slice(from, r.Start-1) + prev.WhitespaceAfter
	}
	if r.End < store.Len()-1 {
		end, _ := store.At(r.End)
		req.After = end.WhitespaceAfter + store.Slice(r.End+1, r.End+suggestContextTokens)
	}
	return req, nil
}
