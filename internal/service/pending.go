package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/stockbin/internal/cache"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/google/uuid"
)

// PendingAction is the serialized form of a write waiting for confirmation.
type PendingAction struct {
	Kind       domain.ConfirmationKind `json:"kind"`
	TeamID     string                  `json:"team_id"`
	UserID     string                  `json:"user_id"`
	AddStock   *AddStockInput          `json:"add_stock,omitempty"`
	DirectEdit *DirectEditInput        `json:"direct_edit,omitempty"`
	PartyID    string                  `json:"party_id,omitempty"`
	Suggestion string                  `json:"suggestion,omitempty"`
}

// PendingStore issues confirmation tokens for pending actions
type PendingStore struct {
	store cache.ConfirmationStore
	ttl   time.Duration
	now   func() time.Time
}

func NewPendingStore(store cache.ConfirmationStore, ttl time.Duration) *PendingStore {
	if store == nil {
		store = cache.NewMemoryConfirmationStore()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PendingStore{store: store, ttl: ttl, now: time.Now}
}

// Create stores action under a fresh token and describes it to the user.
func (p *PendingStore) Create(ctx context.Context, s domain.Session, action PendingAction, message, current, proposed string) (*domain.Confirmation, error) {
	action.TeamID = s.TeamID
	action.UserID = s.UserID

	payload, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("encode pending action: %w", err)
	}

	token := uuid.NewString()
	if err := p.store.Put(ctx, token, payload, p.ttl); err != nil {
		return nil, fmt.Errorf("store pending action: %w", err)
	}

	return &domain.Confirmation{
		Token:     token,
		Kind:      action.Kind,
		Message:   message,
		Current:   current,
		Proposed:  proposed,
		ExpiresAt: p.now().Add(p.ttl),
	}, nil
}

// Take consumes the action behind token. Tokens of another team look expired.
func (p *PendingStore) Take(ctx context.Context, s domain.Session, token string) (*PendingAction, error) {
	payload, ok, err := p.store.Take(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load pending action: %w", err)
	}
	if !ok {
		return nil, domain.ErrConfirmationExpired
	}

	var action PendingAction
	if err := json.Unmarshal(payload, &action); err != nil {
		return nil, fmt.Errorf("decode pending action: %w", err)
	}
	if action.TeamID != s.TeamID {
		return nil, domain.ErrConfirmationExpired
	}
	return &action, nil
}
