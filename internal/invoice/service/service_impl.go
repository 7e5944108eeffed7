package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/billforge/billforge/internal/audit/domain"
	branchdomain "github.com/billforge/billforge/internal/branch/domain"
	"github.com/billforge/billforge/internal/invoice/domain"
	"github.com/billforge/billforge/internal/observability/metrics"
	productdomain "github.com/billforge/billforge/internal/product/domain"
	"github.com/billforge/billforge/internal/sequence"
	taxdomain "github.com/billforge/billforge/internal/tax/domain"
	pkgdb "github.com/billforge/billforge/pkg/db"
	"github.com/billforge/billforge/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	DraftAlloc *sequence.DraftAllocator
	BranchSvc  branchdomain.Service
	ProductSvc productdomain.Service
	TaxSvc     taxdomain.Service
	AuditSvc   auditdomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	draftAlloc *sequence.DraftAllocator
	branchSvc  branchdomain.Service
	productSvc productdomain.Service
	taxSvc     taxdomain.Service
	auditSvc   auditdomain.Service
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		draftAlloc: p.DraftAlloc,
		branchSvc:  p.BranchSvc,
		productSvc: p.ProductSvc,
		taxSvc:     p.TaxSvc,
		auditSvc:   p.AuditSvc,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	invoiceType := domain.ItemType(strings.TrimSpace(req.InvoiceType))
	if invoiceType != domain.ItemTypeProduct && invoiceType != domain.ItemTypeService {
		return domain.Invoice{}, domain.ErrInvalidInvoiceType
	}

	clientID, err := parseRef(req.ClientID, domain.ErrInvalidClient)
	if err != nil {
		return domain.Invoice{}, err
	}
	branchID, err := parseRef(req.BranchID, domain.ErrInvalidBranch)
	if err != nil {
		return domain.Invoice{}, err
	}
	bankAccountID, err := parseRef(req.BankAccountID, domain.ErrInvalidBankAccount)
	if err != nil {
		return domain.Invoice{}, err
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		return domain.Invoice{}, domain.ErrInvalidCurrency
	}

	taxOption, taxRate, err := validateTax(req.TaxOption, req.TaxRate)
	if err != nil {
		return domain.Invoice{}, err
	}

	discount, err := validateAmount(req.Discount, domain.ErrInvalidDiscount)
	if err != nil {
		return domain.Invoice{}, err
	}
	amountPaid, err := validateAmount(req.AmountPaid, domain.ErrInvalidAmountPaid)
	if err != nil {
		return domain.Invoice{}, err
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:            s.genID.Generate(),
		InvoiceType:   invoiceType,
		ClientID:      clientID,
		BranchID:      branchID,
		BankAccountID: bankAccountID,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		Currency:      currency,
		PaymentTerms:  strings.TrimSpace(req.PaymentTerms),
		TaxOption:     taxOption,
		TaxName:       strings.TrimSpace(req.TaxName),
		TaxRate:       taxRate,
		Discount:      discount,
		AmountPaid:    amountPaid,
		IsFinal:       req.IsFinal,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Validate the whole item batch before any number is consumed.
	items, err := s.buildItems(ctx, &invoice, req.Items)
	if err != nil {
		return domain.Invoice{}, err
	}

	if invoice.TaxOption == domain.TaxOptionYes && invoice.TaxRate != nil && invoice.TaxName == "" {
		tax, err := s.taxSvc.FindByRate(ctx, *invoice.TaxRate)
		if err != nil {
			return domain.Invoice{}, err
		}
		if tax != nil {
			invoice.TaxName = tax.Name
		}
	}

	// An invoice created final skips the draft series and carries no number
	// until it is finalized; its number then comes from the branch sequence.
	if !invoice.IsFinal {
		draftNumber, err := s.draftAlloc.Next(ctx)
		if err != nil {
			return domain.Invoice{}, err
		}
		invoice.InvoiceNumber = &draftNumber
	}

	domain.ComputeTotals(&invoice, items)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		if err := s.repo.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		metadata := map[string]any{"is_final": invoice.IsFinal}
		if invoice.InvoiceNumber != nil {
			metadata["invoice_number"] = *invoice.InvoiceNumber
		}
		return s.auditSvc.Record(ctx, tx, "invoice.created", "invoice", invoice.ID.String(), metadata)
	})
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrNumberConflict
		}
		return domain.Invoice{}, err
	}

	if invoice.InvoiceNumber != nil {
		s.metrics.RecordDraftNumber()
	}
	invoice.Items = items
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{FinalOnly: req.FinalOnly}
	if raw := strings.TrimSpace(req.ClientID); raw != "" {
		id, err := parseRef(raw, domain.ErrInvalidClient)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		filter.ClientID = id
	}
	if raw := strings.TrimSpace(req.BranchID); raw != "" {
		id, err := parseRef(raw, domain.ErrInvalidBranch)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		filter.BranchID = id
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: invoice.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	invoice, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	invoice, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	oldBranchID := invoice.BranchID
	if err := s.applyUpdate(invoice, req); err != nil {
		return domain.Invoice{}, err
	}
	branchChanged := invoice.BranchID != oldBranchID

	var newItems []domain.InvoiceItem
	if req.Items != nil {
		newItems, err = s.buildItems(ctx, invoice, *req.Items)
		if err != nil {
			return domain.Invoice{}, err
		}
	}

	// A final invoice whose branch changed surrenders its previous number
	// and takes the next one from the new branch's sequence. The replaced
	// number is audit-logged, never dropped silently.
	var replacedNumber *string
	issuedFinal := false
	if invoice.IsFinal && (invoice.FinalInvoiceNumber == nil || branchChanged) {
		if invoice.FinalInvoiceNumber != nil && branchChanged {
			replaced := *invoice.FinalInvoiceNumber
			replacedNumber = &replaced
		}
		number, err := s.nextFinalNumber(ctx, invoice.BranchID)
		if err != nil {
			return domain.Invoice{}, err
		}
		invoice.FinalInvoiceNumber = &number
		invoice.IsSavedFinal = true
		issuedFinal = true
	}

	effectiveItems := invoice.Items
	if req.Items != nil {
		effectiveItems = newItems
	}
	domain.ComputeTotals(invoice, effectiveItems)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Items != nil {
			if err := s.repo.DeleteItemsByInvoice(ctx, tx, invoice.ID); err != nil {
				return err
			}
			if err := s.repo.InsertItems(ctx, tx, newItems); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		if issuedFinal {
			action := "invoice.finalized"
			metadata := map[string]any{
				"final_invoice_number": *invoice.FinalInvoiceNumber,
				"branch_id":            invoice.BranchID.String(),
			}
			if replacedNumber != nil {
				action = "invoice.final_number_replaced"
				metadata["replaced_number"] = *replacedNumber
				metadata["previous_branch_id"] = oldBranchID.String()
			}
			if err := s.auditSvc.Record(ctx, tx, action, "invoice", invoice.ID.String(), metadata); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrNumberConflict
		}
		return domain.Invoice{}, err
	}

	if issuedFinal {
		s.metrics.RecordFinalNumber()
	}
	invoice.Items = effectiveItems
	return *invoice, nil
}

func (s *Service) Delete(ctx context.Context, req domain.GetInvoiceRequest) error {
	invoice, err := s.load(ctx, req.ID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, invoice.ID)
}

func (s *Service) GenerateFinalNumber(ctx context.Context, req domain.GetInvoiceRequest) (domain.Invoice, error) {
	invoice, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}

	// Idempotent: the first issued number sticks, later calls are no-ops.
	if invoice.FinalInvoiceNumber != nil || !invoice.IsFinal {
		return *invoice, nil
	}

	number, err := s.nextFinalNumber(ctx, invoice.BranchID)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.FinalInvoiceNumber = &number
	invoice.IsSavedFinal = true

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, invoice); err != nil {
			return err
		}
		return s.auditSvc.Record(ctx, tx, "invoice.finalized", "invoice", invoice.ID.String(), map[string]any{
			"final_invoice_number": number,
			"branch_id":            invoice.BranchID.String(),
		})
	})
	if err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrNumberConflict
		}
		return domain.Invoice{}, err
	}

	s.metrics.RecordFinalNumber()
	return *invoice, nil
}

func (s *Service) nextFinalNumber(ctx context.Context, branchID snowflake.ID) (string, error) {
	number, err := s.branchSvc.NextInvoiceNumber(ctx, branchID.String())
	if err != nil {
		if err == branchdomain.ErrNotFound || err == branchdomain.ErrInvalidID {
			return "", domain.ErrInvalidBranch
		}
		return "", err
	}
	return number, nil
}

func (s *Service) applyUpdate(invoice *domain.Invoice, req domain.UpdateInvoiceRequest) error {
	if req.InvoiceType != nil {
		invoiceType := domain.ItemType(strings.TrimSpace(*req.InvoiceType))
		if invoiceType != domain.ItemTypeProduct && invoiceType != domain.ItemTypeService {
			return domain.ErrInvalidInvoiceType
		}
		invoice.InvoiceType = invoiceType
	}
	if req.ClientID != nil {
		id, err := parseRef(*req.ClientID, domain.ErrInvalidClient)
		if err != nil {
			return err
		}
		invoice.ClientID = id
	}
	if req.BranchID != nil {
		id, err := parseRef(*req.BranchID, domain.ErrInvalidBranch)
		if err != nil {
			return err
		}
		invoice.BranchID = id
	}
	if req.BankAccountID != nil {
		id, err := parseRef(*req.BankAccountID, domain.ErrInvalidBankAccount)
		if err != nil {
			return err
		}
		invoice.BankAccountID = id
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = *req.InvoiceDate
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.Currency != nil {
		currency := strings.TrimSpace(*req.Currency)
		if currency == "" {
			return domain.ErrInvalidCurrency
		}
		invoice.Currency = currency
	}
	if req.PaymentTerms != nil {
		invoice.PaymentTerms = strings.TrimSpace(*req.PaymentTerms)
	}
	if req.TaxOption != nil || req.TaxRate != nil {
		rawOption := string(invoice.TaxOption)
		if req.TaxOption != nil {
			rawOption = *req.TaxOption
		}
		rate := invoice.TaxRate
		if req.TaxRate != nil {
			rate = req.TaxRate
		}
		taxOption, taxRate, err := validateTax(rawOption, rate)
		if err != nil {
			return err
		}
		invoice.TaxOption = taxOption
		invoice.TaxRate = taxRate
	}
	if req.TaxName != nil {
		invoice.TaxName = strings.TrimSpace(*req.TaxName)
	}
	if req.Discount != nil {
		discount, err := validateAmount(req.Discount, domain.ErrInvalidDiscount)
		if err != nil {
			return err
		}
		invoice.Discount = discount
	}
	if req.AmountPaid != nil {
		amountPaid, err := validateAmount(req.AmountPaid, domain.ErrInvalidAmountPaid)
		if err != nil {
			return err
		}
		invoice.AmountPaid = amountPaid
	}
	if req.IsFinal != nil {
		invoice.IsFinal = *req.IsFinal
	}
	return nil
}

func (s *Service) load(ctx context.Context, rawID string) (*domain.Invoice, error) {
	id, err := parseRef(rawID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func validateTax(rawOption string, rate *decimal.Decimal) (domain.TaxOption, *decimal.Decimal, error) {
	option := domain.TaxOption(strings.TrimSpace(rawOption))
	if option == "" {
		option = domain.TaxOptionNo
	}
	if option != domain.TaxOptionYes && option != domain.TaxOptionNo {
		return "", nil, domain.ErrInvalidTaxOption
	}
	if option == domain.TaxOptionYes {
		if rate == nil || rate.IsNegative() {
			return "", nil, domain.ErrInvalidTaxRate
		}
	}
	return option, rate, nil
}

func validateAmount(value *decimal.Decimal, invalid error) (decimal.Decimal, error) {
	if value == nil {
		return decimal.Zero, nil
	}
	if value.IsNegative() {
		return decimal.Decimal{}, invalid
	}
	return *value, nil
}

func parseRef(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}
