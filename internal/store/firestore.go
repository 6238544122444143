package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore adapts a *firestore.Client to the Store interface.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) Get(ctx context.Context, col, id string) (Doc, error) {
	snap, err := s.client.Collection(col).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Doc{}, ErrNotFound
		}
		return Doc{}, err
	}
	return Doc{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *Firestore) Set(ctx context.Context, col, id string, data map[string]any) error {
	_, err := s.client.Collection(col).Doc(id).Set(ctx, data)
	return err
}

func (s *Firestore) SetMerge(ctx context.Context, col, id string, data map[string]any) error {
	_, err := s.client.Collection(col).Doc(id).Set(ctx, data, firestore.MergeAll)
	return err
}

func (s *Firestore) Add(ctx context.Context, col string, data map[string]any) (string, error) {
	ref, _, err := s.client.Collection(col).Add(ctx, data)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Firestore) Delete(ctx context.Context, col, id string) error {
	_, err := s.client.Collection(col).Doc(id).Delete(ctx)
	return err
}

func (s *Firestore) Query(ctx context.Context, col string, q Query) ([]Doc, error) {
	fq := s.client.Collection(col).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	var docs []Doc
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Doc{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (s *Firestore) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.client.RunTransaction(ctx, func(ctx context.Context, t *firestore.Transaction) error {
		return fn(&firestoreTx{client: s.client, t: t})
	})
}

type firestoreTx struct {
	client *firestore.Client
	t      *firestore.Transaction
}

func (tx *firestoreTx) Get(col, id string) (Doc, error) {
	snap, err := tx.t.Get(tx.client.Collection(col).Doc(id))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return Doc{}, ErrNotFound
		}
		return Doc{}, err
	}
	if !snap.Exists() {
		return Doc{}, ErrNotFound
	}
	return Doc{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (tx *firestoreTx) Set(col, id string, data map[string]any) error {
	return tx.t.Set(tx.client.Collection(col).Doc(id), data)
}

func (tx *firestoreTx) Update(col, id string, data map[string]any) error {
	return tx.t.Set(tx.client.Collection(col).Doc(id), data, firestore.MergeAll)
}
