package model

// DocumentID identifies a document on the correction gateway
type DocumentID int64

// TokenID is the gateway's stable identifier for a token (never its position)
type TokenID int64

// Token is the smallest addressable unit of a document (word or punctuation)
type Token struct {
	ID              TokenID  `json:"id"`                         // Stable gateway identifier
	Position        int      `json:"position"`                   // 0-based index in the document
	Text            string   `json:"text"`                       // Original token text
	IsWord          bool     `json:"is_word"`                    // Words get click targets, punctuation does not
	WhitespaceAfter string   `json:"whitespace_after,omitempty"` // Exact separator that follows the token
	ToBeNormalized  bool     `json:"to_be_normalized"`           // Flagged as needing correction
	Whitelisted     bool     `json:"whitelisted"`                // Exempt from candidate flagging
	Candidates      []string `json:"candidates,omitempty"`       // Suggested replacements, in gateway order
}

// NeedsCorrection reports whether the token is flagged and not exempted by the whitelist
func (t Token) NeedsCorrection() bool {
	return t.ToBeNormalized && !t.Whitelisted
}

// DocumentMeta holds document-level attributes returned with the tokens
type DocumentMeta struct {
	ID             DocumentID `json:"id"`
	Title          string     `json:"title,omitempty"`          // Source file name
	Grade          *int       `json:"grade,omitempty"`          // Optional reviewer grade
	Finalized      bool       `json:"finalized"`                // Reviewer marked the document as done
	AssignedToUser bool       `json:"assigned_to_user"`         // Current user is assigned to the document
	UsersAssigned  []string   `json:"users_assigned,omitempty"` // Only populated by listings
}

// Document is one fetched version of a document
type Document struct {
	Meta   DocumentMeta
	Tokens []Token
}
