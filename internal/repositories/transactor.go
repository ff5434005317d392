package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Transactor выполняет fn в одной транзакции. Ошибка из fn - откат.
// Если db уже транзакция, GORM использует savepoint.
type Transactor interface {
	WithinTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error
}

type GormTransactor struct{}

func NewTransactor() Transactor {
	return GormTransactor{}
}

func (GormTransactor) WithinTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
