package repository

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Opnex/Ai-Developer-Library/library/internal/errs"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	"github.com/Opnex/Ai-Developer-Library/library/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Repository loads and saves the four persisted collections as whole values.
// Absent keys load as empty collections; there is no partial update, each
// save rewrites the collection under the single-writer assumption.
type Repository interface {
	LoadBooks(ctx context.Context) ([]model.Book, error)
	SaveBooks(ctx context.Context, books []model.Book) error
	LoadUsers(ctx context.Context) ([]model.User, error)
	SaveUsers(ctx context.Context, users []model.User) error
	LoadHistories(ctx context.Context) (model.AllHistories, error)
	SaveHistories(ctx context.Context, histories model.AllHistories) error
	LoadSession(ctx context.Context) (model.Session, error)
	SaveSession(ctx context.Context, session model.Session) error
	ClearSession(ctx context.Context) error
}

type repository struct {
	store storage.Store
	log   *zap.Logger
}

func NewRepository(store storage.Store, log *zap.Logger) (*repository, error) {
	return &repository{
		store: store,
		log:   log.Named("repo"),
	}, nil
}

func (r *repository) LoadBooks(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := r.load(ctx, storage.KeyBooks, &books); err != nil {
		if errors.Is(err, storage.ErrNoKey) {
			return []model.Book{}, nil
		}
		return nil, err
	}
	return books, nil
}

func (r *repository) SaveBooks(ctx context.Context, books []model.Book) error {
	return r.save(ctx, storage.KeyBooks, books)
}

func (r *repository) LoadUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.load(ctx, storage.KeyUsers, &users); err != nil {
		if errors.Is(err, storage.ErrNoKey) {
			return []model.User{}, nil
		}
		return nil, err
	}
	return users, nil
}

func (r *repository) SaveUsers(ctx context.Context, users []model.User) error {
	return r.save(ctx, storage.KeyUsers, users)
}

// LoadHistories passes storage.ErrNoKey through: callers distinguish an
// absent aggregate (rebuild it once) from an empty one.
func (r *repository) LoadHistories(ctx context.Context) (model.AllHistories, error) {
	var histories model.AllHistories
	if err := r.load(ctx, storage.KeyHistories, &histories); err != nil {
		return nil, err
	}
	return histories, nil
}

func (r *repository) SaveHistories(ctx context.Context, histories model.AllHistories) error {
	return r.save(ctx, storage.KeyHistories, histories)
}

func (r *repository) LoadSession(ctx context.Context) (model.Session, error) {
	var session model.Session
	if err := r.load(ctx, storage.KeyCurrentUser, &session); err != nil {
		if errors.Is(err, storage.ErrNoKey) {
			return model.Session{}, errs.ErrNoSession
		}
		return model.Session{}, err
	}
	return session, nil
}

func (r *repository) SaveSession(ctx context.Context, session model.Session) error {
	return r.save(ctx, storage.KeyCurrentUser, session)
}

func (r *repository) ClearSession(ctx context.Context) error {
	return r.store.Remove(ctx, storage.KeyCurrentUser)
}

func (r *repository) load(ctx context.Context, key string, dest any) error {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		r.log.Error("unmarshal", zap.String("key", key), zap.Error(err))
		return errors.Wrapf(err, "unmarshal %q", key)
	}
	return nil
}

func (r *repository) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "marshal %q", key)
	}
	return r.store.Set(ctx, key, data)
}
