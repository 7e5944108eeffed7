package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	auditdomain "github.com/billforge/billforge/internal/audit/domain"
	auditrepo "github.com/billforge/billforge/internal/audit/repository"
	auditservice "github.com/billforge/billforge/internal/audit/service"
	branchdomain "github.com/billforge/billforge/internal/branch/domain"
	branchrepo "github.com/billforge/billforge/internal/branch/repository"
	branchservice "github.com/billforge/billforge/internal/branch/service"
	"github.com/billforge/billforge/internal/clock"
	"github.com/billforge/billforge/internal/invoice/domain"
	"github.com/billforge/billforge/internal/invoice/repository"
	productdomain "github.com/billforge/billforge/internal/product/domain"
	productrepo "github.com/billforge/billforge/internal/product/repository"
	productservice "github.com/billforge/billforge/internal/product/service"
	"github.com/billforge/billforge/internal/sequence"
	taxdomain "github.com/billforge/billforge/internal/tax/domain"
	taxrepo "github.com/billforge/billforge/internal/tax/repository"
	taxservice "github.com/billforge/billforge/internal/tax/service"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	svc        *Service
	db         *gorm.DB
	node       *snowflake.Node
	fake       *clock.FakeClock
	branchSvc  branchdomain.Service
	productSvc productdomain.Service
	taxSvc     taxdomain.Service
}

func setupInvoiceService(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&branchdomain.Branch{},
		&productdomain.Product{},
		&taxdomain.Tax{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&sequence.Counter{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC))

	branchSvc := branchservice.New(branchservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: branchrepo.Provide(),
	})
	productSvc := productservice.New(productservice.Params{
		DB: db, Log: log, GenID: node, Repo: productrepo.Provide(),
	})
	taxSvc := taxservice.New(taxservice.Params{
		DB: db, Log: log, GenID: node, Repo: taxrepo.Provide(),
	})
	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Repo: auditrepo.Provide(),
	})

	alloc := sequence.NewAllocator(sequence.Params{DB: db, Log: log})
	draft := sequence.NewDraftAllocator(sequence.DraftParams{Alloc: alloc})

	svc := &Service{
		db:         db,
		log:        log,
		genID:      node,
		repo:       repository.Provide(),
		draftAlloc: draft,
		branchSvc:  branchSvc,
		productSvc: productSvc,
		taxSvc:     taxSvc,
		auditSvc:   auditSvc,
	}

	return &testEnv{
		svc:        svc,
		db:         db,
		node:       node,
		fake:       fake,
		branchSvc:  branchSvc,
		productSvc: productSvc,
		taxSvc:     taxSvc,
	}
}

func (e *testEnv) createBranch(t *testing.T, prefix string) branchdomain.Branch {
	t.Helper()

	branch, err := e.branchSvc.Create(context.Background(), branchdomain.CreateBranchRequest{
		Name:         prefix + " office",
		Address:      "100 MG Road",
		SeriesPrefix: prefix,
	})
	require.NoError(t, err)
	return branch
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func decPtr(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	d := dec(t, value)
	return &d
}

func (e *testEnv) baseCreateRequest(t *testing.T, branch branchdomain.Branch) domain.CreateInvoiceRequest {
	t.Helper()

	return domain.CreateInvoiceRequest{
		InvoiceType:   "service",
		ClientID:      e.node.Generate().String(),
		BranchID:      branch.ID.String(),
		BankAccountID: e.node.Generate().String(),
		InvoiceDate:   time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC),
		Currency:      "INR",
		Items: []domain.ItemInput{
			{ItemType: "service", Name: "Consulting", Quantity: 2, UnitCost: decPtr(t, "100")},
			{ItemType: "service", Name: "Support", Quantity: 1, UnitCost: decPtr(t, "50")},
		},
	}
}

func TestCreateInvoiceDerivesTotals(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")

	req := env.baseCreateRequest(t, branch)
	req.Discount = decPtr(t, "10")
	req.AmountPaid = decPtr(t, "20")

	invoice, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, invoice.InvoiceNumber)
	assert.Equal(t, "INV-00001", *invoice.InvoiceNumber)
	assert.Nil(t, invoice.FinalInvoiceNumber)
	assert.True(t, invoice.Subtotal.Equal(dec(t, "250")), "subtotal = %s", invoice.Subtotal)
	assert.True(t, invoice.GST.IsZero())
	assert.True(t, invoice.TotalDue.Equal(dec(t, "220")), "total due = %s", invoice.TotalDue)
	assert.Len(t, invoice.Items, 2)

	second, err := env.svc.Create(context.Background(), env.baseCreateRequest(t, branch))
	require.NoError(t, err)
	require.NotNil(t, second.InvoiceNumber)
	assert.Equal(t, "INV-00002", *second.InvoiceNumber)
}

func TestCreateFinalInvoiceSkipsDraftNumber(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	req := env.baseCreateRequest(t, branch)
	req.IsFinal = true
	invoice, err := env.svc.Create(ctx, req)
	require.NoError(t, err)

	// Born final: no draft number, and no final number until finalized.
	assert.Nil(t, invoice.InvoiceNumber)
	assert.Nil(t, invoice.FinalInvoiceNumber)
	assert.False(t, invoice.IsSavedFinal)

	// The draft slot was not burned: the next draft invoice starts the series.
	draft, err := env.svc.Create(ctx, env.baseCreateRequest(t, branch))
	require.NoError(t, err)
	require.NotNil(t, draft.InvoiceNumber)
	assert.Equal(t, "INV-00001", *draft.InvoiceNumber)

	result, err := env.svc.GenerateFinalNumber(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, result.FinalInvoiceNumber)
	assert.Equal(t, "BLR202420250001", *result.FinalInvoiceNumber)
	assert.Nil(t, result.InvoiceNumber)
	assert.True(t, result.IsSavedFinal)
}

func TestCreateInvoiceWithTaxFillsNameFromRate(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")

	_, err := env.taxSvc.Create(context.Background(), taxdomain.CreateTaxRequest{
		Name:       "GST 18%",
		Percentage: dec(t, "18"),
	})
	require.NoError(t, err)

	req := env.baseCreateRequest(t, branch)
	req.TaxOption = "yes"
	req.TaxRate = decPtr(t, "18")

	invoice, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "GST 18%", invoice.TaxName)
	assert.True(t, invoice.Subtotal.Equal(dec(t, "250")))
	assert.True(t, invoice.GST.Equal(dec(t, "45")), "gst = %s", invoice.GST)
	assert.True(t, invoice.TotalDue.Equal(dec(t, "295")), "total due = %s", invoice.TotalDue)
}

func TestCreateInvoiceRejectsInvalidItems(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	req := env.baseCreateRequest(t, branch)
	req.Items[1].Name = ""
	_, err := env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrItemNameRequired)

	req = env.baseCreateRequest(t, branch)
	req.Items[0].Quantity = 0
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	req = env.baseCreateRequest(t, branch)
	req.Items[0].ItemType = "product"
	req.Items[0].ProductID = env.node.Generate().String()
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrItemProductMissing)

	req = env.baseCreateRequest(t, branch)
	req.Discount = decPtr(t, "-1")
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	// One bad line rejects the batch: nothing was written.
	var count int64
	require.NoError(t, env.db.Model(&domain.Invoice{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProductItemsCopyCatalogValues(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	product, err := env.productSvc.Create(ctx, productdomain.CreateProductRequest{
		Name:     "Widget",
		UnitCost: dec(t, "25.50"),
	})
	require.NoError(t, err)

	req := env.baseCreateRequest(t, branch)
	req.InvoiceType = "product"
	req.Items = []domain.ItemInput{
		{ItemType: "product", ProductID: product.ID.String(), Quantity: 4},
	}

	invoice, err := env.svc.Create(ctx, req)
	require.NoError(t, err)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "Widget", invoice.Items[0].Name)
	assert.True(t, invoice.Items[0].UnitCost.Equal(dec(t, "25.50")))
	assert.True(t, invoice.Items[0].Total.Equal(dec(t, "102.00")), "total = %s", invoice.Items[0].Total)

	// Later catalog edits leave the issued line untouched.
	_, err = env.productSvc.Update(ctx, productdomain.UpdateProductRequest{
		ID:       product.ID.String(),
		UnitCost: decPtr(t, "99"),
	})
	require.NoError(t, err)

	reloaded, err := env.svc.GetByID(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].UnitCost.Equal(dec(t, "25.50")))
}

func TestGenerateFinalNumberIsIdempotent(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	invoice, err := env.svc.Create(ctx, env.baseCreateRequest(t, branch))
	require.NoError(t, err)

	// Not final yet: finalize passes through without a number.
	result, err := env.svc.GenerateFinalNumber(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	assert.Nil(t, result.FinalInvoiceNumber)

	isFinal := true
	result, err = env.svc.Update(ctx, domain.UpdateInvoiceRequest{
		ID:      invoice.ID.String(),
		IsFinal: &isFinal,
	})
	require.NoError(t, err)
	require.NotNil(t, result.FinalInvoiceNumber)
	assert.Equal(t, "BLR202420250001", *result.FinalInvoiceNumber)
	assert.True(t, result.IsSavedFinal)

	// Finalizing again keeps the first number and burns nothing.
	again, err := env.svc.GenerateFinalNumber(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, again.FinalInvoiceNumber)
	assert.Equal(t, "BLR202420250001", *again.FinalInvoiceNumber)

	number, err := env.branchSvc.NextInvoiceNumber(ctx, branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "BLR202420250002", number)
}

func TestUpdateBranchChangeReissuesFinalNumber(t *testing.T) {
	env := setupInvoiceService(t)
	first := env.createBranch(t, "AAA")
	second := env.createBranch(t, "BBB")
	ctx := context.Background()

	req := env.baseCreateRequest(t, first)
	req.IsFinal = true
	invoice, err := env.svc.Create(ctx, req)
	require.NoError(t, err)

	result, err := env.svc.GenerateFinalNumber(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	require.NotNil(t, result.FinalInvoiceNumber)
	assert.Equal(t, "AAA202420250001", *result.FinalInvoiceNumber)

	// Moving a final invoice to another branch surrenders the old number
	// and takes the next one from the new branch's sequence.
	branchID := second.ID.String()
	result, err = env.svc.Update(ctx, domain.UpdateInvoiceRequest{
		ID:       invoice.ID.String(),
		BranchID: &branchID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.FinalInvoiceNumber)
	assert.Equal(t, "BBB202420250001", *result.FinalInvoiceNumber)

	var replacements int64
	require.NoError(t, env.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", "invoice.final_number_replaced").
		Count(&replacements).Error)
	assert.Equal(t, int64(1), replacements)
}

func TestUpdateReplacesItemSet(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	invoice, err := env.svc.Create(ctx, env.baseCreateRequest(t, branch))
	require.NoError(t, err)

	items := []domain.ItemInput{
		{ItemType: "service", Name: "Migration", Quantity: 1, UnitCost: decPtr(t, "500")},
	}
	result, err := env.svc.Update(ctx, domain.UpdateInvoiceRequest{
		ID:    invoice.ID.String(),
		Items: &items,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Migration", result.Items[0].Name)
	assert.True(t, result.Subtotal.Equal(dec(t, "500")), "subtotal = %s", result.Subtotal)

	var count int64
	require.NoError(t, env.db.Model(&domain.InvoiceItem{}).
		Where("invoice_id = ?", invoice.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestItemOperationsRecomputeParentTotals(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	invoice, err := env.svc.Create(ctx, env.baseCreateRequest(t, branch))
	require.NoError(t, err)

	item, err := env.svc.CreateItem(ctx, domain.CreateItemRequest{
		InvoiceID: invoice.ID.String(),
		Item:      domain.ItemInput{ItemType: "service", Name: "Training", Quantity: 1, UnitCost: decPtr(t, "150")},
	})
	require.NoError(t, err)

	reloaded, err := env.svc.GetByID(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	assert.True(t, reloaded.Subtotal.Equal(dec(t, "400")), "subtotal = %s", reloaded.Subtotal)

	quantity := int64(2)
	_, err = env.svc.UpdateItem(ctx, domain.UpdateItemRequest{
		ID:       item.ID.String(),
		Quantity: &quantity,
	})
	require.NoError(t, err)

	reloaded, err = env.svc.GetByID(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	assert.True(t, reloaded.Subtotal.Equal(dec(t, "550")), "subtotal = %s", reloaded.Subtotal)

	require.NoError(t, env.svc.DeleteItem(ctx, domain.GetItemRequest{ID: item.ID.String()}))

	reloaded, err = env.svc.GetByID(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	require.NoError(t, err)
	assert.True(t, reloaded.Subtotal.Equal(dec(t, "250")), "subtotal = %s", reloaded.Subtotal)
}

func TestListFinalOnly(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	draft, err := env.svc.Create(ctx, env.baseCreateRequest(t, branch))
	require.NoError(t, err)

	finalReq := env.baseCreateRequest(t, branch)
	finalReq.IsFinal = true
	final, err := env.svc.Create(ctx, finalReq)
	require.NoError(t, err)

	_, err = env.svc.GenerateFinalNumber(ctx, domain.GetInvoiceRequest{ID: final.ID.String()})
	require.NoError(t, err)

	all, err := env.svc.List(ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Invoices, 2)

	finals, err := env.svc.List(ctx, domain.ListInvoiceRequest{FinalOnly: true})
	require.NoError(t, err)
	require.Len(t, finals.Invoices, 1)
	assert.Equal(t, final.ID, finals.Invoices[0].ID)
	assert.NotEqual(t, draft.ID, finals.Invoices[0].ID)
}

func TestDeleteInvoiceCascadesItems(t *testing.T) {
	env := setupInvoiceService(t)
	branch := env.createBranch(t, "BLR")
	ctx := context.Background()

	invoice, err := env.svc.Create(ctx, env.baseCreateRequest(t, branch))
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()}))

	_, err = env.svc.GetByID(ctx, domain.GetInvoiceRequest{ID: invoice.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int64
	require.NoError(t, env.db.Model(&domain.InvoiceItem{}).
		Where("invoice_id = ?", invoice.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}
