package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ppiankov/normalia/internal/animate"
	"github.com/ppiankov/normalia/internal/gateway"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/session"
)

var (
	correctFirst      int
	correctLast       int
	correctText       string
	correctEverywhere bool
	correctYes        bool
	excludeDoc        string
)

// correctCmd represents the correct command
var correctCmd = &cobra.Command{
	Use:   "correct <doc>",
	Short: "Create or replace a correction over a token range",
	Long: `Correct stores a replacement for positions [first, last]. An empty --text
removes the correction starting at --first instead.

--everywhere asks the gateway to apply the same replacement to every
occurrence of the original text across the corpus. It is irreversible and
asks for confirmation unless --yes is given.

Example:
  normalia correct 12 --first 3 --text "und"
  normalia correct 12 --first 3 --last 4 --text "zum Beispiel"
  normalia correct 12 --first 3 --text "und" --everywhere`,
	Args: cobra.ExactArgs(1),
	RunE: runCorrect,
}

var uncorrectCmd = &cobra.Command{
	Use:   "uncorrect <doc> <index>",
	Short: "Remove the correction covering a position",
	Args:  cobra.ExactArgs(2),
	RunE:  runUncorrect,
}

var excludeCmd = &cobra.Command{
	Use:   "exclude <tokenId>",
	Short: "Toggle whether a token is flagged for correction",
	Long: `Exclude flips the "to be normalized" flag of a single token. Existing
corrections over the token are left alone.

Example:
  normalia exclude 40213 --doc 12`,
	Args: cobra.ExactArgs(1),
	RunE: runExclude,
}

var resetCmd = &cobra.Command{
	Use:   "reset <doc>",
	Short: "Remove every correction of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runReset,
}

var finalizeCmd = &cobra.Command{
	Use:   "finalize <doc>",
	Short: "Toggle the finalized flag of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runFinalize,
}

func init() {
	rootCmd.AddCommand(correctCmd, uncorrectCmd, excludeCmd, resetCmd, finalizeCmd)

	correctCmd.Flags().IntVar(&correctFirst, "first", -1, "first covered position")
	correctCmd.Flags().IntVar(&correctLast, "last", -1, "last covered position (default: --first)")
	correctCmd.Flags().StringVar(&correctText, "text", "", "replacement text (empty removes the correction)")
	correctCmd.Flags().BoolVar(&correctEverywhere, "everywhere", false, "apply to every occurrence in the corpus")
	correctCmd.Flags().BoolVarP(&correctYes, "yes", "y", false, "do not ask for confirmation")
	_ = correctCmd.MarkFlagRequired("first")

	excludeCmd.Flags().StringVar(&excludeDoc, "doc", "", "document containing the token")
	_ = excludeCmd.MarkFlagRequired("doc")
}

// editFunc performs one mutation on a loaded session
type editFunc func(ctx context.Context, s *session.Session) error

// runEdit loads the document, applies edit and reports what changed
func runEdit(cmd *cobra.Command, docArg string, confirm session.Confirmer, edit editFunc) error {
	id, err := parseDocID(docArg)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), cfg, gw, id, confirm)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := edit(cmd.Context(), s); err != nil {
		return err
	}

	printEditResult(cmd.OutOrStdout(), s)
	return nil
}

func printEditResult(w io.Writer, s *session.Session) {
	res := s.Render()
	fmt.Fprintln(w, annotate(res.Units))
	if changed := changedRanges(s.Highlights()); changed != "" {
		fmt.Fprintf(w, "\nChanged positions: %s\n", changed)
	} else {
		fmt.Fprintln(w, "\nNo positions changed")
	}
	if meta := s.Meta(); meta.Finalized {
		fmt.Fprintln(w, "Document is finalized")
	}
}

// changedRanges formats highlight positions as "1-3, 7"
func changedRanges(hs []animate.Highlight) string {
	if len(hs) == 0 {
		return ""
	}
	out := ""
	start, prev := hs[0].Position, hs[0].Position
	flush := func() {
		if out != "" {
			out += ", "
		}
		if start == prev {
			out += strconv.Itoa(start)
		} else {
			out += fmt.Sprintf("%d-%d", start, prev)
		}
	}
	for _, h := range hs[1:] {
		if h.Position == prev+1 {
			prev = h.Position
			continue
		}
		flush()
		start, prev = h.Position, h.Position
	}
	flush()
	return out
}

func runCorrect(cmd *cobra.Command, args []string) error {
	last := correctLast
	if last < 0 {
		last = correctFirst
	}
	req := gateway.CreateRequest{
		FirstIndex:      correctFirst,
		LastIndex:       last,
		ReplacementText: correctText,
		ApplyEverywhere: correctEverywhere,
	}
	return runEdit(cmd, args[0], stdinConfirmer(correctYes), func(ctx context.Context, s *session.Session) error {
		return s.CreateOrReplace(ctx, req)
	})
}

func runUncorrect(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid index %q", args[1])
	}
	return runEdit(cmd, args[0], nil, func(ctx context.Context, s *session.Session) error {
		if start, ok := s.CoveringStart(index); ok && start != index {
			fmt.Fprintf(cmd.ErrOrStderr(), "Position %d is inside the correction starting at %d\n", index, start)
			index = start
		}
		return s.Delete(ctx, index)
	})
}

func runExclude(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid token id %q", args[0])
	}
	return runEdit(cmd, excludeDoc, nil, func(ctx context.Context, s *session.Session) error {
		if err := s.ToggleExcluded(ctx, model.TokenID(n)); err != nil {
			return err
		}
		if tok, ok := s.Tokens().ByID(model.TokenID(n)); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Token %d %q at position %d: to be normalized = %v\n\n",
				tok.ID, tok.Text, tok.Position, tok.ToBeNormalized)
		}
		return nil
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	return runEdit(cmd, args[0], nil, func(ctx context.Context, s *session.Session) error {
		return s.DeleteAll(ctx)
	})
}

func runFinalize(cmd *cobra.Command, args []string) error {
	return runEdit(cmd, args[0], nil, func(ctx context.Context, s *session.Session) error {
		return s.ToggleFinalized(ctx)
	})
}
