package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/normalia/internal/correction"
	"github.com/ppiankov/normalia/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(model.GatewayConfig{
		BaseURL:   server.URL + "/api/",
		Timeout:   5 * time.Second,
		Token:     "secret",
		UserAgent: "normalia-test",
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	if _, err := NewClient(model.GatewayConfig{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestClient_FetchDocument(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/texts/7" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing request id")
		}
		_, _ = fmt.Fprint(w, `{
			"id": 7, "grade": 3, "normalizedByUser": true, "sourceFileName": "essay.txt", "assignedToUser": true,
			"tokens": [
				{"id": 70, "text": "Ola", "isWord": true, "position": 0, "toBeNormalized": true, "candidates": ["Olá"], "whitespaceAfter": " ", "whitelisted": false},
				{"id": 71, "text": "!", "isWord": false, "position": 1, "toBeNormalized": false, "candidates": [], "whitespaceAfter": null}
			]
		}`)
	}))

	doc, err := client.FetchDocument(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchDocument failed: %v", err)
	}
	if doc.Meta.ID != 7 || doc.Meta.Title != "essay.txt" || !doc.Meta.Finalized || *doc.Meta.Grade != 3 {
		t.Errorf("unexpected meta: %+v", doc.Meta)
	}
	if len(doc.Tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(doc.Tokens))
	}
	if doc.Tokens[0].ID != 70 || doc.Tokens[0].WhitespaceAfter != " " || doc.Tokens[0].Candidates[0] != "Olá" {
		t.Errorf("unexpected token: %+v", doc.Tokens[0])
	}
	if doc.Tokens[1].WhitespaceAfter != "" {
		t.Errorf("null whitespace should map to empty string")
	}
}

func TestClient_FetchCorrections(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"1": {"last_index": 3, "new_token": "fast animal"}, "6": {"last_index": 6, "new_token": "x"}}`)
	}))

	spans, err := client.FetchCorrections(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchCorrections failed: %v", err)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].FirstIndex < spans[j].FirstIndex })

	want := []model.CorrectionSpan{
		{FirstIndex: 1, LastIndex: 3, ReplacementText: "fast animal"},
		{FirstIndex: 6, LastIndex: 6, ReplacementText: "x"},
	}
	if len(spans) != len(want) || spans[0] != want[0] || spans[1] != want[1] {
		t.Errorf("spans = %+v, want %+v", spans, want)
	}
}

func TestClient_FetchCorrections_BadKey(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"one": {"last_index": 3, "new_token": "x"}}`)
	}))

	_, err := client.FetchCorrections(context.Background(), 1)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestClient_MutationPayloads(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &c.body); err != nil {
				t.Errorf("bad JSON body: %v", err)
			}
		}
		calls = append(calls, c)
		_, _ = fmt.Fprint(w, `{"message": "ok"}`)
	}))

	ctx := context.Background()
	if err := client.CreateCorrection(ctx, 5, CreateRequest{FirstIndex: 1, LastIndex: 2, ReplacementText: "hi", ApplyEverywhere: true}); err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteCorrection(ctx, 5, 1); err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteAllCorrections(ctx, 5); err != nil {
		t.Fatal(err)
	}
	if err := client.ToggleExcluded(ctx, 99); err != nil {
		t.Fatal(err)
	}
	if err := client.ToggleFinalized(ctx, 5); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 5 {
		t.Fatalf("expected 5 calls, got %d", len(calls))
	}

	create := calls[0]
	if create.method != http.MethodPost || create.path != "/api/texts/5/normalizations" {
		t.Errorf("unexpected create call: %+v", create)
	}
	if create.body["first_index"] != float64(1) || create.body["last_index"] != float64(2) ||
		create.body["new_token"] != "hi" || create.body["suggest_for_all"] != true {
		t.Errorf("unexpected create body: %v", create.body)
	}

	if calls[1].method != http.MethodDelete || calls[1].body["word_index"] != float64(1) {
		t.Errorf("unexpected delete call: %+v", calls[1])
	}
	if calls[2].method != http.MethodDelete || calls[2].path != "/api/texts/5/normalizations/all" {
		t.Errorf("unexpected delete-all call: %+v", calls[2])
	}
	if calls[3].method != http.MethodPatch || calls[3].path != "/api/tokens/99/suggestions/toggle" || calls[3].body["token_id"] != float64(99) {
		t.Errorf("unexpected toggle call: %+v", calls[3])
	}
	if calls[4].method != http.MethodPatch || calls[4].path != "/api/texts/5/normalizations" {
		t.Errorf("unexpected finalize call: %+v", calls[4])
	}
}

func TestClient_ErrorStatusIsTransportError(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"error": "session expired"}`)
	}))

	err := client.DeleteCorrection(context.Background(), 1, 3)

	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.StatusCode != http.StatusUnauthorized || terr.Message != "session expired" || !terr.Unauthorized() {
		t.Errorf("unexpected error: %+v", terr)
	}
	if attempts.Load() != 1 {
		t.Errorf("failed calls must not be retried, got %d attempts", attempts.Load())
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(model.GatewayConfig{BaseURL: url, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.FetchDocument(context.Background(), 1)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if terr.StatusCode != 0 || terr.Err == nil {
		t.Errorf("expected network error without status, got %+v", terr)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{}`)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListDocuments(ctx)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
}

func TestClient_ListDocuments(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/texts/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = fmt.Fprint(w, `{"textsData": [
			{"id": 1, "grade": null, "usersAssigned": ["ana"], "normalizedByUser": false, "sourceFileName": "a.txt"},
			{"id": 2, "grade": 5, "usersAssigned": [], "normalizedByUser": true, "sourceFileName": null}
		]}`)
	}))

	docs, err := client.ListDocuments(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Title != "a.txt" || docs[0].Grade != nil || !docs[1].Finalized {
		t.Errorf("unexpected listing: %+v", docs)
	}
}

func TestClient_CreateRejectsEmptyReplacementLocally(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	err := client.CreateCorrection(context.Background(), 1, CreateRequest{FirstIndex: 1, LastIndex: 1})
	var verr *correction.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("invalid create reached the network")
	}
}
