package storage

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const kvTableName = `kv_store`

type sqlStore struct {
	db  *sqlx.DB
	qb  sq.StatementBuilderType
	log *zap.Logger
}

// NewSQLStore builds a Store over the kv_store table. Placeholder format
// follows the underlying driver (pgx wants dollar placeholders).
func NewSQLStore(db *sqlx.DB, log *zap.Logger) (*sqlStore, error) {
	qb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if db.DriverName() == "pgx" {
		qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &sqlStore{
		db:  db,
		qb:  qb,
		log: log.Named("store"),
	}, nil
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.qb.Select("value").
		From(kvTableName).
		Where(sq.Eq{"key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var value []byte
	if err := s.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoKey
		}
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return value, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.qb.Insert(kvTableName).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UTC()).
		Suffix(`on conflict(key) do update set value = excluded.value, updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		s.log.Error("Set", zap.String("key", key), zap.Error(err))
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (s *sqlStore) Remove(ctx context.Context, key string) error {
	query, args, err := s.qb.Delete(kvTableName).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "remove %q", key)
	}
	return nil
}
