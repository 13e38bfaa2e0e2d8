package devserver

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/NDP4/CompanyLock-Manager/pkg/cmap"
	"github.com/NDP4/CompanyLock-Manager/pkg/token"
)

var (
	errTokenInvalid = errors.New("token invalid or expired")
	errTokenOwner   = errors.New("username does not own the token")
)

// tokenPayload is the signed body of an access token.
type tokenPayload struct {
	UserID    int64  `json:"user_id"`
	AdminID   int64  `json:"admin_id"`
	ExpiresAt string `json:"expires_at"`
	Nonce     string `json:"nonce"`
}

type tokenRecord struct {
	userID    int64
	adminID   int64
	minutes   int
	expiresAt time.Time
	used      bool
}

// tokenBook mints and redeems single-use access tokens. A token is
// base64url(payload) "." hex(hmac-sha256) and must also be on record.
type tokenBook struct {
	signer  *token.Signer
	records *cmap.Map[string, tokenRecord]
}

func newTokenBook(key []byte) (*tokenBook, error) {
	signer, err := token.NewSigner(key)
	if err != nil {
		return nil, err
	}
	return &tokenBook{signer: signer, records: cmap.New[string, tokenRecord]()}, nil
}

func (b *tokenBook) issue(userID, adminID int64, minutes int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(time.Duration(minutes) * time.Minute).UTC()
	payload, err := json.Marshal(tokenPayload{
		UserID:    userID,
		AdminID:   adminID,
		ExpiresAt: formatTime(expiresAt),
		Nonce:     ulid.Make().String(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	tok := b.signer.Sign(payload)
	b.records.Set(tok, tokenRecord{
		userID:    userID,
		adminID:   adminID,
		minutes:   minutes,
		expiresAt: expiresAt,
	})
	return tok, expiresAt, nil
}

// redeem consumes tok. owns is consulted before consumption; when it
// fails the token stays usable and errTokenOwner is returned.
func (b *tokenBook) redeem(tok string, now time.Time, owns func(userID int64) bool) (tokenRecord, error) {
	raw, err := b.signer.Verify(tok)
	if err != nil {
		return tokenRecord{}, errTokenInvalid
	}
	var p tokenPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return tokenRecord{}, errTokenInvalid
	}

	var result error
	rec, _ := b.records.Compute(tok, func(old tokenRecord, exists bool) (tokenRecord, bool) {
		switch {
		case !exists:
			result = errTokenInvalid
			return old, false
		case old.used, !now.Before(old.expiresAt), old.userID != p.UserID:
			result = errTokenInvalid
			return old, true
		case !owns(old.userID):
			result = errTokenOwner
			return old, true
		}
		old.used = true
		return old, true
	})
	if result != nil {
		return tokenRecord{}, result
	}
	return rec, nil
}

// sweep drops used and expired records and returns how many went.
func (b *tokenBook) sweep(now time.Time) int {
	return b.records.DeleteFunc(func(_ string, r tokenRecord) bool {
		return r.used || !now.Before(r.expiresAt)
	})
}

const isoLayout = "2006-01-02T15:04:05.999999"

// formatTime renders t as a zone-less UTC ISO timestamp.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoLayout)
}
