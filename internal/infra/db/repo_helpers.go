package db

import (
	"errors"

	"certmanager/internal/domain"

	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("db unavailable")

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func copyString(in *string) *string {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}
