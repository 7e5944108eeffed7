// Package sequence provides transactional keyed counters for number issuance.
package sequence

import (
	"context"
	"errors"
	"time"

	"github.com/billforge/billforge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Counter is one named monotonic counter row.
type Counter struct {
	Name      string    `gorm:"primaryKey" json:"name"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "sequence_counters" }

// SeedFunc computes the initial counter value when the row does not exist yet.
// It runs inside the allocation transaction.
type SeedFunc func(ctx context.Context, tx *gorm.DB) (int64, error)

// Allocator hands out strictly increasing values per counter name. Each call
// performs exactly one increment inside a serialized critical section.
type Allocator struct {
	db   *gorm.DB
	log  *zap.Logger
	keys *KeyedMutex
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func NewAllocator(p Params) *Allocator {
	return &Allocator{
		db:   p.DB,
		log:  p.Log.Named("sequence.allocator"),
		keys: NewKeyedMutex(),
	}
}

// Next increments the named counter and returns its new value. The seed runs
// only on first use; pass nil to start from zero.
func (a *Allocator) Next(ctx context.Context, name string, seed SeedFunc) (int64, error) {
	unlock := a.keys.Lock(name)
	defer unlock()

	var value int64
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter Counter
		err := db.LockForUpdate(tx).Where("name = ?", name).First(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = Counter{Name: name}
			if seed != nil {
				base, seedErr := seed(ctx, tx)
				if seedErr != nil {
					return seedErr
				}
				counter.LastValue = base
			}
			counter.UpdatedAt = time.Now().UTC()
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		counter.LastValue++
		counter.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&counter).Error; err != nil {
			return err
		}

		value = counter.LastValue
		return nil
	})
	if err != nil {
		return 0, err
	}

	return value, nil
}

var Module = fx.Module("sequence",
	fx.Provide(NewAllocator),
	fx.Provide(NewDraftAllocator),
)
