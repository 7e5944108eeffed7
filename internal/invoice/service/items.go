package service

import (
	"context"
	"strings"
	"time"

	"github.com/billforge/billforge/internal/invoice/domain"
	productdomain "github.com/billforge/billforge/internal/product/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// buildItems validates and derives the whole batch before anything is
// persisted. One bad line rejects the entire request.
func (s *Service) buildItems(ctx context.Context, invoice *domain.Invoice, inputs []domain.ItemInput) ([]domain.InvoiceItem, error) {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := s.buildItem(ctx, invoice, input)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) buildItem(ctx context.Context, invoice *domain.Invoice, input domain.ItemInput) (domain.InvoiceItem, error) {
	itemType := domain.ItemType(strings.TrimSpace(input.ItemType))
	if itemType == "" {
		itemType = invoice.InvoiceType
	}
	if itemType != domain.ItemTypeProduct && itemType != domain.ItemTypeService {
		return domain.InvoiceItem{}, domain.ErrInvalidItemType
	}

	if input.Quantity <= 0 {
		return domain.InvoiceItem{}, domain.ErrInvalidQuantity
	}

	now := time.Now().UTC()
	item := domain.InvoiceItem{
		ID:        s.genID.Generate(),
		InvoiceID: invoice.ID,
		ItemType:  itemType,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	switch itemType {
	case domain.ItemTypeProduct:
		productID, err := parseRef(input.ProductID, domain.ErrItemProductMissing)
		if err != nil {
			return domain.InvoiceItem{}, err
		}
		product, err := s.lookupProduct(ctx, productID)
		if err != nil {
			return domain.InvoiceItem{}, err
		}
		// Name and cost are copied at write time so later product edits
		// leave issued invoices untouched.
		item.ProductID = &productID
		item.Name = product.Name
		item.UnitCost = product.UnitCost
	case domain.ItemTypeService:
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return domain.InvoiceItem{}, domain.ErrItemNameRequired
		}
		if input.UnitCost == nil || input.UnitCost.IsNegative() {
			return domain.InvoiceItem{}, domain.ErrInvalidUnitCost
		}
		item.Name = name
		item.UnitCost = *input.UnitCost
	}

	domain.DeriveItem(&item, invoice.TaxOption, invoice.TaxRate)
	return item, nil
}

func (s *Service) lookupProduct(ctx context.Context, id snowflake.ID) (productdomain.Product, error) {
	product, err := s.productSvc.GetByID(ctx, productdomain.GetProductRequest{ID: id.String()})
	if err != nil {
		if err == productdomain.ErrNotFound || err == productdomain.ErrInvalidID {
			return productdomain.Product{}, domain.ErrItemProductMissing
		}
		return productdomain.Product{}, err
	}
	return product, nil
}

func (s *Service) CreateItem(ctx context.Context, req domain.CreateItemRequest) (domain.InvoiceItem, error) {
	invoice, err := s.load(ctx, req.InvoiceID)
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	item, err := s.buildItem(ctx, invoice, req.Item)
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertItems(ctx, tx, []domain.InvoiceItem{item}); err != nil {
			return err
		}
		return s.recompute(ctx, tx, invoice)
	})
	if err != nil {
		return domain.InvoiceItem{}, err
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateItemRequest) (domain.InvoiceItem, error) {
	id, err := parseRef(req.ID, domain.ErrInvalidID)
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	item, err := s.repo.FindItemByID(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceItem{}, err
	}
	if item == nil {
		return domain.InvoiceItem{}, domain.ErrItemNotFound
	}

	invoice, err := s.load(ctx, item.InvoiceID.String())
	if err != nil {
		return domain.InvoiceItem{}, err
	}

	if req.ItemType != nil {
		itemType := domain.ItemType(strings.TrimSpace(*req.ItemType))
		if itemType != domain.ItemTypeProduct && itemType != domain.ItemTypeService {
			return domain.InvoiceItem{}, domain.ErrInvalidItemType
		}
		item.ItemType = itemType
	}
	if req.Product != nil {
		productID, err := parseRef(*req.Product, domain.ErrItemProductMissing)
		if err != nil {
			return domain.InvoiceItem{}, err
		}
		item.ProductID = &productID
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return domain.InvoiceItem{}, domain.ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.UnitCost != nil {
		if req.UnitCost.IsNegative() {
			return domain.InvoiceItem{}, domain.ErrInvalidUnitCost
		}
		item.UnitCost = *req.UnitCost
	}

	switch item.ItemType {
	case domain.ItemTypeProduct:
		if item.ProductID == nil {
			return domain.InvoiceItem{}, domain.ErrItemProductMissing
		}
		// Product lines re-copy the catalog snapshot on every save.
		product, err := s.lookupProduct(ctx, *item.ProductID)
		if err != nil {
			return domain.InvoiceItem{}, err
		}
		item.Name = product.Name
		item.UnitCost = product.UnitCost
	case domain.ItemTypeService:
		if item.Name == "" {
			return domain.InvoiceItem{}, domain.ErrItemNameRequired
		}
		item.ProductID = nil
	}

	domain.DeriveItem(item, invoice.TaxOption, invoice.TaxRate)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpdateItem(ctx, tx, item); err != nil {
			return err
		}
		return s.recompute(ctx, tx, invoice)
	})
	if err != nil {
		return domain.InvoiceItem{}, err
	}
	return *item, nil
}

func (s *Service) DeleteItem(ctx context.Context, req domain.GetItemRequest) error {
	id, err := parseRef(req.ID, domain.ErrInvalidID)
	if err != nil {
		return err
	}

	item, err := s.repo.FindItemByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrItemNotFound
	}

	invoice, err := s.load(ctx, item.InvoiceID.String())
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteItem(ctx, tx, id); err != nil {
			return err
		}
		return s.recompute(ctx, tx, invoice)
	})
}

// recompute refreshes the parent invoice's derived money fields from the item
// rows currently visible inside tx.
func (s *Service) recompute(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	items, err := s.repo.ListItems(ctx, tx, invoice.ID)
	if err != nil {
		return err
	}
	domain.ComputeTotals(invoice, items)
	return s.repo.UpdateDerived(ctx, tx, invoice)
}
