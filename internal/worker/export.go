package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/gateway"
	"github.com/ppiankov/normalia/internal/logging"
	"github.com/ppiankov/normalia/internal/model"
	"github.com/ppiankov/normalia/internal/resolve"
	"github.com/ppiankov/normalia/internal/tokens"
)

// ErrNotExported marks a requested document the pool never finished
var ErrNotExported = errors.New("document not exported")

// Fetcher is the read side of the gateway needed for export
type Fetcher interface {
	FetchDocument(ctx context.Context, id model.DocumentID) (*model.Document, error)
	FetchCorrections(ctx context.Context, id model.DocumentID) ([]model.CorrectionSpan, error)
}

var _ Fetcher = (gateway.Gateway)(nil)

// ExportJob renders one document's corrected text
type ExportJob struct {
	ID      model.DocumentID
	Fetcher Fetcher
	Tagged  bool
}

// Execute fetches the document and its corrections and resolves them
func (j *ExportJob) Execute(ctx context.Context) Result {
	ctx = logging.WithDocumentID(ctx, int64(j.ID))
	res := &ExportResult{ID: j.ID}

	doc, err := j.Fetcher.FetchDocument(ctx, j.ID)
	if err != nil {
		res.Error = fmt.Errorf("fetch document: %w", err)
		return res
	}
	spans, err := j.Fetcher.FetchCorrections(ctx, j.ID)
	if err != nil {
		res.Error = fmt.Errorf("fetch corrections: %w", err)
		return res
	}

	store, err := tokens.NewStore(doc.Tokens)
	if err != nil {
		res.Error = fmt.Errorf("invalid document: %w", err)
		return res
	}
	idx, warnings := correction.Build(spans, store.Len())

	out := resolve.Resolve(resolve.Input{Tokens: store, Corrections: idx})
	warnings = append(warnings, out.Warnings...)
	for _, w := range warnings {
		logging.IntegrityWarning(ctx, w.FirstIndex, w.LastIndex, w.Reason)
	}

	res.Meta = doc.Meta
	res.Corrections = idx.Len()
	res.Warnings = warnings
	if j.Tagged {
		res.Text = resolve.TaggedText(out.Units, store)
	} else {
		res.Text = resolve.PlainText(out.Units)
	}
	return res
}

// ExportResult represents the result of an export job
type ExportResult struct {
	ID          model.DocumentID
	Meta        model.DocumentMeta
	Text        string
	Corrections int
	Warnings    []correction.IntegrityWarning
	Error       error
}

// GetError returns the error from the export result
func (r *ExportResult) GetError() error {
	return r.Error
}

// FileName returns the export file name: the source file name when known,
// otherwise "<id>.txt"
func (r *ExportResult) FileName() string {
	name := filepath.Base(r.Meta.Title)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return strconv.FormatInt(int64(r.ID), 10) + ".txt"
	}
	if filepath.Ext(name) == "" {
		name += ".txt"
	}
	return name
}

// GradeDir returns the directory a document is grouped under
func (r *ExportResult) GradeDir() string {
	if r.Meta.Grade == nil {
		return "ungraded"
	}
	return "grade_" + strconv.Itoa(*r.Meta.Grade)
}

// BatchProcessor exports multiple documents concurrently
type BatchProcessor struct {
	fetcher     Fetcher
	concurrency int
	tagged      bool
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(fetcher Fetcher, concurrency int, tagged bool) *BatchProcessor {
	return &BatchProcessor{
		fetcher:     fetcher,
		concurrency: concurrency,
		tagged:      tagged,
	}
}

// ProcessIDs exports the documents and returns results ordered by id
func (b *BatchProcessor) ProcessIDs(ctx context.Context, ids []model.DocumentID) []*ExportResult {
	if len(ids) == 0 {
		return []*ExportResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, id := range ids {
		if !pool.Submit(&ExportJob{ID: id, Fetcher: b.fetcher, Tagged: b.tagged}) {
			break
		}
	}

	results := pool.Wait()

	exports := make([]*ExportResult, 0, len(ids))
	done := make(map[model.DocumentID]bool, len(results))
	for _, result := range results {
		r := result.(*ExportResult)
		done[r.ID] = true
		exports = append(exports, r)
	}

	// Jobs dropped on cancellation still get a failed result.
	for _, id := range ids {
		if done[id] {
			continue
		}
		done[id] = true
		err := ErrNotExported
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %w", ErrNotExported, ctxErr)
		}
		exports = append(exports, &ExportResult{ID: id, Error: err})
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].ID < exports[j].ID })
	return exports
}

// ProcessFile reads document ids from a file and exports them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ExportResult, error) {
	ids, err := ReadIDsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}

	return b.ProcessIDs(ctx, ids), nil
}

// WriteResults writes every successful result under dir, grouped by grade,
// and returns the written paths
func WriteResults(dir string, results []*ExportResult) ([]string, error) {
	var paths []string
	for _, r := range results {
		if r.Error != nil {
			continue
		}
		sub := filepath.Join(dir, r.GradeDir())
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return paths, fmt.Errorf("create %s: %w", sub, err)
		}
		path := filepath.Join(sub, r.FileName())
		if err := os.WriteFile(path, []byte(r.Text), 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadIDsFromFile reads document ids from a file (one per line)
func ReadIDsFromFile(filePath string) ([]model.DocumentID, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []model.DocumentID
	seen := make(map[model.DocumentID]bool)

	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: invalid document id %q", line, text)
		}
		id := model.DocumentID(n)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
