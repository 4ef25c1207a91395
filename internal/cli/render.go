package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/resolve"
	"github.com/ppiankov/normalia/internal/session"
)

type clickArg struct {
	pos   int
	multi bool
}

// clickFlag appends to a sequence shared by --click and --multi-click so
// the order given on the command line is the order applied
type clickFlag struct {
	seq   *[]clickArg
	multi bool
}

func (f *clickFlag) String() string {
	if f.seq == nil {
		return ""
	}
	var parts []string
	for _, c := range *f.seq {
		if c.multi == f.multi {
			parts = append(parts, strconv.Itoa(c.pos))
		}
	}
	return strings.Join(parts, ",")
}

func (f *clickFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return fmt.Errorf("invalid position %q", part)
		}
		*f.seq = append(*f.seq, clickArg{pos: n, multi: f.multi})
	}
	return nil
}

func (f *clickFlag) Type() string {
	return "positions"
}

var (
	renderClicks   []clickArg
	renderHover    int
	renderOriginal bool
	renderJSON     bool
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <doc>",
	Short: "Render a document with its corrections overlaid",
	Long: `Render resolves the corrected view of a document.

Clicks are replayed in order to build a selection: --click is a plain
click (new single selection), --multi-click holds the multi-select
modifier (extends the selection). --hover sets the hovered position shared
by both views.

Markers: [x] correction, x? candidate, <x> selected, _x_ hovered.

Example:
  normalia render 12
  normalia render 12 --click 3 --multi-click 5
  normalia render 12 --hover 4 --original
  normalia render 12 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().Var(&clickFlag{seq: &renderClicks}, "click", "plain click at position (repeatable)")
	renderCmd.Flags().Var(&clickFlag{seq: &renderClicks, multi: true}, "multi-click", "multi-select click at position (repeatable)")
	renderCmd.Flags().IntVar(&renderHover, "hover", -1, "hovered position")
	renderCmd.Flags().BoolVar(&renderOriginal, "original", false, "also render the original view")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "print JSON")
}

type renderOutput struct {
	Document   model.DocumentMeta            `json:"document"`
	Text       string                        `json:"text"`
	Units      []model.RenderUnit            `json:"units"`
	Original   []model.RenderUnit            `json:"original,omitempty"`
	Warnings   []correction.IntegrityWarning `json:"warnings,omitempty"`
	Selection  *selectionOutput              `json:"selection,omitempty"`
	HoverRange *resolve.Span                 `json:"hover_range,omitempty"`
}

type selectionOutput struct {
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Text       string   `json:"text"`
	Single     bool     `json:"single"`
	Candidates []string `json:"candidates,omitempty"`
}

func runRender(cmd *cobra.Command, args []string) error {
	id, err := parseDocID(args[0])
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

	s, err := openSession(cmd.Context(), cfg, gw, id, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	out, err := buildRender(s, renderClicks, renderHover, renderOriginal)
	if err != nil {
		return err
	}

	if renderJSON {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	printRender(cmd.OutOrStdout(), out)
	return nil
}

func buildRender(s *session.Session, clicks []clickArg, hover int, original bool) (*renderOutput, error) {
	for _, c := range clicks {
		if _, err := s.Click(c.pos, c.multi); err != nil {
			return nil, err
		}
	}
	if hover >= 0 {
		s.Hover(&hover)
	}

	res := s.Render()
	out := &renderOutput{
		Document: s.Meta(),
		Text:     resolve.PlainText(res.Units),
		Units:    res.Units,
		Warnings: append(s.Warnings(), res.Warnings...),
	}
	if original {
		out.Original = s.RenderOriginal()
	}
	if rng, ok := s.HoverRange(); ok {
		out.HoverRange = &rng
	}
	if r := s.Selection().Range; r.Set {
		cands, single := s.SelectionCandidates()
		out.Selection = &selectionOutput{
			Start:      r.Start,
			End:        r.End,
			Text:       s.SelectedText(),
			Single:     single,
			Candidates: cands,
		}
	}
	return out, nil
}

func printRender(w io.Writer, out *renderOutput) {
	title := out.Document.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(w, "Document %d: %s\n\n", out.Document.ID, title)
	fmt.Fprintln(w, annotate(out.Units))

	if out.Original != nil {
		fmt.Fprintln(w, "\nOriginal:")
		fmt.Fprintln(w, annotate(out.Original))
	}

	if sel := out.Selection; sel != nil {
		fmt.Fprintf(w, "\nSelection: %d-%d %q\n", sel.Start, sel.End, sel.Text)
		if sel.Single && len(sel.Candidates) > 0 {
			fmt.Fprintf(w, "Candidates: %s\n", strings.Join(sel.Candidates, ", "))
		}
	}
	if out.HoverRange != nil {
		fmt.Fprintf(w, "Hover: %d-%d\n", out.HoverRange.From, out.HoverRange.To)
	}
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.Error())
	}
}

// annotate renders units as text with state markers
func annotate(units []model.RenderUnit) string {
	var b strings.Builder
	for _, u := range units {
		text := u.Text
		if u.Has(model.ClassCorrected) {
			text = "[" + text + "]"
		} else if u.Has(model.ClassCandidate) {
			text += "?"
		}
		if u.Has(model.ClassSelected) {
			text = "<" + text + ">"
		}
		if u.Hovered {
			text = "_" + text + "_"
		}
		b.WriteString(text)
		b.WriteString(u.WhitespaceAfter)
	}
	return b.String()
}
