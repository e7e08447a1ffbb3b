package repository

import (
	"context"
	"fmt"
	"time"

	"holyfit-backend/internal/domains/store/model"
	"holyfit-backend/pkg/cache"
)

// Persister is the durable side of a session: one opaque blob per session id.
type Persister interface {
	Load(ctx context.Context, sessionID string) (*model.Snapshot, error)
	Save(ctx context.Context, snapshot model.Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

type cachePersister struct {
	cache     cache.Cache
	namespace string
	ttl       time.Duration
}

// NewCachePersister stores snapshots under "<namespace>:<sessionID>".
func NewCachePersister(c cache.Cache, namespace string, ttl time.Duration) Persister {
	return &cachePersister{cache: c, namespace: namespace, ttl: ttl}
}

// Key returns the storage key of a session.
func Key(namespace, sessionID string) string {
	return namespace + ":" + sessionID
}

// Load returns nil, nil when nothing is stored for the session.
func (p *cachePersister) Load(ctx context.Context, sessionID string) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	found, err := p.cache.Get(ctx, Key(p.namespace, sessionID), &snapshot)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if !found {
		return nil, nil
	}
	return &snapshot, nil
}

func (p *cachePersister) Save(ctx context.Context, snapshot model.Snapshot) error {
	if err := p.cache.Set(ctx, Key(p.namespace, snapshot.SessionID), snapshot, p.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", snapshot.SessionID, err)
	}
	return nil
}

func (p *cachePersister) Delete(ctx context.Context, sessionID string) error {
	return p.cache.Delete(ctx, Key(p.namespace, sessionID))
}
