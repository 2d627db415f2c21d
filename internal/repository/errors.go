package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by every backing-store implementation when the
// referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrStatusChanged is returned when a guarded status write finds the record
// in a different status than the caller loaded.
var ErrStatusChanged = errors.New("record status changed")

func translateNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
