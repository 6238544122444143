package repository

import (
	"context"
	"errors"
	"time"

	"github.com/greenhabit/greenpoints-backend/internal/model"
	"github.com/greenhabit/greenpoints-backend/internal/store"
)

type UserRepository interface {
	Get(ctx context.Context, uid string) (*model.User, error)
	GetDoc(ctx context.Context, uid string) (map[string]any, error)
	Set(ctx context.Context, uid string, data map[string]any) error
	SetMerge(ctx context.Context, uid string, data map[string]any) error
	Delete(ctx context.Context, uid string) error
	ListAll(ctx context.Context) ([]model.User, error)
	ListAllDocs(ctx context.Context) ([]store.Doc, error)
	TopByPoints(ctx context.Context, limit int) ([]model.User, error)
	CreateIfAbsent(ctx context.Context, uid, email, displayName, avatarURL string) (*model.User, error)
}

type userRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{store: s}
}

func (r *userRepository) Get(ctx context.Context, uid string) (*model.User, error) {
	doc, err := r.store.Get(ctx, ColUsers, uid)
	if err != nil {
		return nil, err
	}
	return decodeUser(doc)
}

func (r *userRepository) GetDoc(ctx context.Context, uid string) (map[string]any, error) {
	doc, err := r.store.Get(ctx, ColUsers, uid)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (r *userRepository) Set(ctx context.Context, uid string, data map[string]any) error {
	return r.store.Set(ctx, ColUsers, uid, data)
}

func (r *userRepository) SetMerge(ctx context.Context, uid string, data map[string]any) error {
	return r.store.SetMerge(ctx, ColUsers, uid, data)
}

func (r *userRepository) Delete(ctx context.Context, uid string) error {
	return r.store.Delete(ctx, ColUsers, uid)
}

func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	docs, err := r.store.Query(ctx, ColUsers, store.Query{})
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		u, err := decodeUser(d)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (r *userRepository) ListAllDocs(ctx context.Context) ([]store.Doc, error) {
	return r.store.Query(ctx, ColUsers, store.Query{})
}

func (r *userRepository) TopByPoints(ctx context.Context, limit int) ([]model.User, error) {
	docs, err := r.store.Query(ctx, ColUsers, store.Query{
		OrderBy: "greenPoints",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		u, err := decodeUser(d)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// CreateIfAbsent lazily creates the profile document with a zero balance on
// first sign-in and returns the stored profile either way.
func (r *userRepository) CreateIfAbsent(ctx context.Context, uid, email, displayName, avatarURL string) (*model.User, error) {
	u, err := r.Get(ctx, uid)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	data := map[string]any{
		"uid":         uid,
		"email":       email,
		"displayName": displayName,
		"avatarUrl":   avatarURL,
		"greenPoints": int64(0),
		"createdAt":   time.Now().UTC(),
	}
	if err := r.store.Set(ctx, ColUsers, uid, data); err != nil {
		return nil, err
	}
	return r.Get(ctx, uid)
}

func decodeUser(doc store.Doc) (*model.User, error) {
	var u model.User
	if err := model.Decode(doc.Data, &u); err != nil {
		return nil, err
	}
	if u.UID == "" {
		u.UID = doc.ID
	}
	return &u, nil
}
