package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ppiankov/normalia/internal/animate"
	"github.com/ppiankov/normalia/internal/gateway"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/session"
)

func parseDocID(s string) (model.DocumentID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid document id %q", s)
	}
	return model.DocumentID(n), nil
}

func newGateway(cfg *model.Config) (*gateway.Client, error) {
	gw, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		return nil, fmt.Errorf("create gateway client: %w", err)
	}
	return gw, nil
}

// openSession builds a session for id and loads it
func openSession(ctx context.Context, cfg *model.Config, gw gateway.Gateway, id model.DocumentID, confirm session.Confirmer) (*session.Session, error) {
	s := session.New(gw, id, session.Options{
		Confirmer: confirm,
		Animation: []animate.Option{
			animate.WithWindow(cfg.Animation.HighlightWindow),
			animate.WithSweepInterval(cfg.Animation.SweepInterval),
		},
	})
	if err := s.Refresh(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("load document %d: %w", id, err)
	}
	return s, nil
}

// promptConfirmer asks on out and reads y/N from in
type promptConfirmer struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newPromptConfirmer(in io.Reader, out io.Writer, assumeYes bool) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (p *promptConfirmer) ConfirmApplyEverywhere(ctx context.Context, req session.ConfirmRequest) (bool, error) {
	if p.assumeYes {
		return true, nil
	}

	fmt.Fprintf(p.out, "Replace every occurrence of %q with %q in all documents? This cannot be undone. [y/N] ",
		req.OriginalText, req.ReplacementText)

	answer := make(chan string, 1)
	errc := make(chan error, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			errc <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errc:
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("read answer: %w", err)
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func stdinConfirmer(assumeYes bool) session.Confirmer {
	return newPromptConfirmer(os.Stdin, os.Stderr, assumeYes)
}
