package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ppiankov/normalia/internal/gateway"
	"github.com/ppiankov/normalia/internal/model"
)

// fakeGateway is an in-memory gateway. block, when set for a document,
// holds FetchCorrections until the channel is closed.
type fakeGateway struct {
	mu          sync.Mutex
	docs        map[model.DocumentID]*model.Document
	corrections map[model.DocumentID]map[int]model.CorrectionSpan
	block       map[model.DocumentID]chan struct{}
	failNext    error
	calls       []string
	lastCreate  gateway.CreateRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		docs:        make(map[model.DocumentID]*model.Document),
		corrections: make(map[model.DocumentID]map[int]model.CorrectionSpan),
		block:       make(map[model.DocumentID]chan struct{}),
	}
}

func (g *fakeGateway) addDocument(id model.DocumentID, texts ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	doc := &model.Document{Meta: model.DocumentMeta{ID: id, Title: fmt.Sprintf("doc-%d.txt", id)}}
	for i, text := range texts {
		tok := model.Token{
			ID:       model.TokenID(int(id)*1000 + i),
			Position: i,
			Text:     text,
			IsWord:   text != "." && text != ",",
		}
		if i < len(texts)-1 && texts[i+1] != "." && texts[i+1] != "," {
			tok.WhitespaceAfter = " "
		}
		doc.Tokens = append(doc.Tokens, tok)
	}
	g.docs[id] = doc
	g.corrections[id] = make(map[int]model.CorrectionSpan)
}

func (g *fakeGateway) seed(id model.DocumentID, spans ...model.CorrectionSpan) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, s := range spans {
		g.corrections[id][s.FirstIndex] = s
	}
}

func (g *fakeGateway) record(call string) error {
	g.calls = append(g.calls, call)
	if err := g.failNext; err != nil {
		g.failNext = nil
		return err
	}
	return nil
}

func (g *fakeGateway) callLog() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) ListDocuments(ctx context.Context) ([]model.DocumentMeta, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("list"); err != nil {
		return nil, err
	}
	var metas []model.DocumentMeta
	for _, d := range g.docs {
		metas = append(metas, d.Meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	return metas, nil
}

func (g *fakeGateway) FetchDocument(ctx context.Context, id model.DocumentID) (*model.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(fmt.Sprintf("fetch_document %d", id)); err != nil {
		return nil, err
	}
	doc, ok := g.docs[id]
	if !ok {
		return nil, &gateway.TransportError{Op: "fetch_document", StatusCode: 404, Message: "Text not found"}
	}
	cp := *doc
	cp.Tokens = append([]model.Token(nil), doc.Tokens...)
	return &cp, nil
}

func (g *fakeGateway) FetchCorrections(ctx context.Context, id model.DocumentID) ([]model.CorrectionSpan, error) {
	g.mu.Lock()
	wait := g.block[id]
	g.mu.Unlock()
	if wait != nil {
		<-wait
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(fmt.Sprintf("fetch_corrections %d", id)); err != nil {
		return nil, err
	}
	var spans []model.CorrectionSpan
	for _, s := range g.corrections[id] {
		spans = append(spans, s)
	}
	return spans, nil
}

func (g *fakeGateway) CreateCorrection(ctx context.Context, id model.DocumentID, req gateway.CreateRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(fmt.Sprintf("create %d %d-%d %q everywhere=%v", id, req.FirstIndex, req.LastIndex, req.ReplacementText, req.ApplyEverywhere)); err != nil {
		return err
	}
	g.lastCreate = req
	for first, s := range g.corrections[id] {
		if s.FirstIndex <= req.LastIndex && req.FirstIndex <= s.LastIndex {
			delete(g.corrections[id], first)
		}
	}
	g.corrections[id][req.FirstIndex] = model.CorrectionSpan{
		FirstIndex:      req.FirstIndex,
		LastIndex:       req.LastIndex,
		ReplacementText: req.ReplacementText,
	}
	return nil
}

func (g *fakeGateway) DeleteCorrection(ctx context.Context, id model.DocumentID, firstIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(fmt.Sprintf("delete %d %d", id, firstIndex)); err != nil {
		return err
	}
	delete(g.corrections[id], firstIndex)
	return nil
}

func (g *fakeGateway) DeleteAllCorrections(ctx context.Context, id model.DocumentID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(fmt.Sprintf("delete_all %d", id)); err != nil {
		return err
	}
	g.corrections[id] = make(map[int]model.CorrectionSpan)
	return nil
}

func (g *fakeGateway) ToggleExcluded(ctx context.Context, tokenID model.TokenID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(fmt.Sprintf("toggle_excluded %d", tokenID)); err != nil {
		return err
	}
	for _, doc := range g.docs {
		for i := range doc.Tokens {
			if doc.Tokens[i].ID == tokenID {
				doc.Tokens[i].ToBeNormalized = !doc.Tokens[i].ToBeNormalized
			}
		}
	}
	return nil
}

func (g *fakeGateway) ToggleFinalized(ctx context.Context, id model.DocumentID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(fmt.Sprintf("toggle_finalized %d", id)); err != nil {
		return err
	}
	g.docs[id].Meta.Finalized = !g.docs[id].Meta.Finalized
	return nil
}
