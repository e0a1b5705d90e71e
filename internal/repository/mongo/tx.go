package mongo

import (
	"context"

	"alcyxob/gym-manager/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// sessionTxManager runs units of work inside a MongoDB multi-document
// transaction. Requires a replica set or sharded cluster.
type sessionTxManager struct {
	client *mongo.Client
}

// NewTxManager returns a transactional TxManager when enabled is true and a
// sequential one otherwise (standalone mongod has no transactions).
func NewTxManager(client *mongo.Client, enabled bool) repository.TxManager {
	if !enabled {
		return sequentialTxManager{}
	}
	return &sessionTxManager{client: client}
}

func (m *sessionTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// WithTransaction retries fn on transient errors, so fn must only
	// perform database writes.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (m *sessionTxManager) Atomic() bool { return true }

// sequentialTxManager calls fn directly. Writes already made stay in place
// when fn fails.
type sequentialTxManager struct{}

func (sequentialTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (sequentialTxManager) Atomic() bool { return false }
