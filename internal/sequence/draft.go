package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	draftCounterName = "invoice_draft"

	// DraftPrefix precedes every provisional invoice number.
	DraftPrefix = "INV-"
)

// DraftAllocator issues globally monotonic provisional invoice numbers in the
// form INV-00001. The counter seeds itself once from the highest existing
// draft number, so numbering continues across data imported before the
// counter row existed.
type DraftAllocator struct {
	alloc *Allocator
}

type DraftParams struct {
	fx.In

	Alloc *Allocator
}

func NewDraftAllocator(p DraftParams) *DraftAllocator {
	return &DraftAllocator{alloc: p.Alloc}
}

// Next returns the next draft number.
func (d *DraftAllocator) Next(ctx context.Context) (string, error) {
	value, err := d.alloc.Next(ctx, draftCounterName, seedFromExistingDrafts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", DraftPrefix, value), nil
}

func seedFromExistingDrafts(ctx context.Context, tx *gorm.DB) (int64, error) {
	var numbers []string
	err := tx.WithContext(ctx).
		Table("invoices").
		Where("invoice_number LIKE ?", DraftPrefix+"%").
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return 0, err
	}

	var max int64
	for _, number := range numbers {
		suffix := strings.TrimPrefix(number, DraftPrefix)
		value, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max, nil
}
