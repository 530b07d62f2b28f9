package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist. Repositories
// translate gorm.ErrRecordNotFound so service code stays storage-agnostic.
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
