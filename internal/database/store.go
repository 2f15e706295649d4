package database

import (
	"errors"

	"github.com/lib/pq"

	"github.com/curiosinfo/curiosinfo/internal/storage"
)

// Store implements the storage contract over Postgres. Entity methods are
// split across actor_store.go, topic_store.go and article_store.go.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

var _ storage.Store = (*Store)(nil)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (class 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
