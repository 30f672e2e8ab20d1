package db

import (
	"context"
	"fmt"
	"sync/atomic"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go.uber.org/zap"
)

// firestoreStore implements DocumentStore on a Firestore client.
//
// The Admin SDK has no client-side offline mode, so the network toggle is a
// gate in front of the client: while disabled every remote call fails fast
// with ErrNetworkDisabled instead of blocking on an unreachable backend.
// Writes issued through the Admin SDK are settled synchronously, which makes
// WaitForPendingWrites trivially satisfied.
type firestoreStore struct {
	client         *firestore.Client
	logger         *zap.Logger
	networkEnabled atomic.Bool
}

// NewFirestoreStore wraps a Firestore client as a DocumentStore. The network
// starts enabled.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) DocumentStore {
	s := &firestoreStore{client: client, logger: logger}
	s.networkEnabled.Store(true)
	return s
}

func (s *firestoreStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	if !s.networkEnabled.Load() {
		return nil, ErrNetworkDisabled
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	data := snap.Data()
	data["id"] = snap.Ref.ID
	return data, nil
}

func (s *firestoreStore) RunQuery(ctx context.Context, collection string, q Query) ([]map[string]interface{}, error) {
	if !s.networkEnabled.Load() {
		return nil, ErrNetworkDisabled
	}

	fsq := s.client.Collection(collection).Query
	for _, w := range q.Wheres {
		fsq = fsq.Where(w.Field, w.Op, w.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fsq = fsq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fsq = fsq.Limit(q.Limit)
	}

	iter := fsq.Documents(ctx)
	defer iter.Stop()

	var results []map[string]interface{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", collection, err)
		}
		data := snap.Data()
		data["id"] = snap.Ref.ID
		results = append(results, data)
	}
	return results, nil
}

func (s *firestoreStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if !s.networkEnabled.Load() {
		return ErrNetworkDisabled
	}
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Merge(ctx context.Context, collection, id string, data map[string]interface{}) error {
	if !s.networkEnabled.Load() {
		return ErrNetworkDisabled
	}
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to merge %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	if !s.networkEnabled.Load() {
		return ErrNetworkDisabled
	}
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) EnableNetwork(ctx context.Context) error {
	s.networkEnabled.Store(true)
	s.logger.Info("store network enabled")
	return nil
}

func (s *firestoreStore) DisableNetwork(ctx context.Context) error {
	s.networkEnabled.Store(false)
	s.logger.Info("store network disabled")
	return nil
}

// WaitForPendingWrites returns once in-flight writes have settled. Admin SDK
// writes complete before Set/Merge/Delete return, so there is nothing to wait
// for here.
func (s *firestoreStore) WaitForPendingWrites(ctx context.Context) error {
	return nil
}
