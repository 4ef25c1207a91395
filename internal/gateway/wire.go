package gateway

import (
	"fmt"
	"strconv"

	"github.com/ppiankov/normalia/internal/model"
)

// Wire schemas of the gateway REST API

type wireToken struct {
	ID              int64    `json:"id"`
	Text            string   `json:"text"`
	IsWord          bool     `json:"isWord"`
	Position        int      `json:"position"`
	ToBeNormalized  bool     `json:"toBeNormalized"`
	Candidates      []string `json:"candidates"`
	WhitespaceAfter *string  `json:"whitespaceAfter"`
	Whitelisted     bool     `json:"whitelisted"`
}

type wireDocument struct {
	ID               int64       `json:"id"`
	Grade            *int        `json:"grade"`
	Tokens           []wireToken `json:"tokens"`
	NormalizedByUser bool        `json:"normalizedByUser"`
	SourceFileName   *string     `json:"sourceFileName"`
	AssignedToUser   bool        `json:"assignedToUser"`
}

type wireDocumentMeta struct {
	ID               int64    `json:"id"`
	Grade            *int     `json:"grade"`
	UsersAssigned    []string `json:"usersAssigned"`
	NormalizedByUser bool     `json:"normalizedByUser"`
	SourceFileName   *string  `json:"sourceFileName"`
}

type wireDocumentList struct {
	TextsData []wireDocumentMeta `json:"textsData"`
}

// wireCorrection is one value of the correction map, keyed by the
// stringified first index
type wireCorrection struct {
	LastIndex int    `json:"last_index"`
	NewToken  string `json:"new_token"`
}

type wireCreateCorrection struct {
	FirstIndex    int    `json:"first_index"`
	LastIndex     int    `json:"last_index"`
	NewToken      string `json:"new_token"`
	SuggestForAll bool   `json:"suggest_for_all"`
}

type wireDeleteCorrection struct {
	WordIndex int `json:"word_index"`
}

type wireToggleExcluded struct {
	TokenID int64 `json:"token_id"`
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (t wireToken) toModel() model.Token {
	tok := model.Token{
		ID:             model.TokenID(t.ID),
		Position:       t.Position,
		Text:           t.Text,
		IsWord:         t.IsWord,
		ToBeNormalized: t.ToBeNormalized,
		Whitelisted:    t.Whitelisted,
		Candidates:     t.Candidates,
	}
	if t.WhitespaceAfter != nil {
		tok.WhitespaceAfter = *t.WhitespaceAfter
	}
	return tok
}

func (d wireDocument) toModel() *model.Document {
	doc := &model.Document{
		Meta: model.DocumentMeta{
			ID:             model.DocumentID(d.ID),
			Title:          deref(d.SourceFileName),
			Grade:          d.Grade,
			Finalized:      d.NormalizedByUser,
			AssignedToUser: d.AssignedToUser,
		},
		Tokens: make([]model.Token, len(d.Tokens)),
	}
	for i, t := range d.Tokens {
		doc.Tokens[i] = t.toModel()
	}
	return doc
}

func (m wireDocumentMeta) toModel() model.DocumentMeta {
	return model.DocumentMeta{
		ID:            model.DocumentID(m.ID),
		Title:         deref(m.SourceFileName),
		Grade:         m.Grade,
		Finalized:     m.NormalizedByUser,
		UsersAssigned: m.UsersAssigned,
	}
}

// correctionsToModel converts the stringified-key map at the boundary.
// Ordering and disjointness are enforced later by correction.Build.
func correctionsToModel(wire map[string]wireCorrection) ([]model.CorrectionSpan, error) {
	spans := make([]model.CorrectionSpan, 0, len(wire))
	for key, c := range wire {
		first, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("correction key %q is not an integer", key)
		}
		spans = append(spans, model.CorrectionSpan{
			FirstIndex:      first,
			LastIndex:       c.LastIndex,
			ReplacementText: c.NewToken,
		})
	}
	return spans, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
