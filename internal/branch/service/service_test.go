package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/billforge/billforge/internal/branch/domain"
	"github.com/billforge/billforge/internal/branch/repository"
	"github.com/billforge/billforge/internal/clock"
	"github.com/billforge/billforge/internal/sequence"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupBranchService(t *testing.T, fake *clock.FakeClock) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Branch{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:    db,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: fake,
		repo:  repository.Provide(),
		keys:  sequence.NewKeyedMutex(),
	}
	return svc, db, node
}

func createBranch(t *testing.T, svc *Service, prefix string) domain.Branch {
	t.Helper()

	branch, err := svc.Create(context.Background(), domain.CreateBranchRequest{
		Name:         "Bengaluru",
		Address:      "100 MG Road",
		City:         "Bengaluru",
		State:        "Karnataka",
		SeriesPrefix: prefix,
	})
	require.NoError(t, err)
	return branch
}

func TestNextInvoiceNumberSequence(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC))
	svc, db, _ := setupBranchService(t, fake)
	branch := createBranch(t, svc, "BLR")

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		number, err := svc.NextInvoiceNumber(ctx, branch.ID.String())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("BLR20242025%04d", i), number)
	}

	var stored domain.Branch
	require.NoError(t, db.First(&stored, "id = ?", branch.ID).Error)
	assert.Equal(t, int64(3), stored.LastInvoiceNumber)
	require.NotNil(t, stored.LastResetDate)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), stored.LastResetDate.UTC())
}

func TestNextInvoiceNumberFiscalYearReset(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC))
	svc, _, _ := setupBranchService(t, fake)
	branch := createBranch(t, svc, "DEL")

	ctx := context.Background()

	// January 2025 falls in FY 2024-25.
	number, err := svc.NextInvoiceNumber(ctx, branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "DEL202420250001", number)

	number, err = svc.NextInvoiceNumber(ctx, branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "DEL202420250002", number)

	// April 1 starts FY 2025-26; the counter resets exactly once.
	fake.Set(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))

	number, err = svc.NextInvoiceNumber(ctx, branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "DEL202520260001", number)

	number, err = svc.NextInvoiceNumber(ctx, branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "DEL202520260002", number)
}

func TestNextInvoiceNumberMarchBelongsToPreviousFiscalYear(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, time.March, 31, 23, 59, 0, 0, time.UTC))
	svc, _, _ := setupBranchService(t, fake)
	branch := createBranch(t, svc, "MUM")

	number, err := svc.NextInvoiceNumber(context.Background(), branch.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "MUM202320240001", number)
}

func TestNextInvoiceNumberIndependentBranches(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc, _, _ := setupBranchService(t, fake)
	first := createBranch(t, svc, "AAA")
	second := createBranch(t, svc, "BBB")

	ctx := context.Background()

	number, err := svc.NextInvoiceNumber(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "AAA202420250001", number)

	// The second branch starts its own sequence at 1.
	number, err = svc.NextInvoiceNumber(ctx, second.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "BBB202420250001", number)
}

func TestNextInvoiceNumberConcurrent(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	svc, db, _ := setupBranchService(t, fake)
	branch := createBranch(t, svc, "CON")

	const workers = 20

	var wg sync.WaitGroup
	results := make(chan string, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := svc.NextInvoiceNumber(context.Background(), branch.ID.String())
			if err != nil {
				errs <- err
				return
			}
			results <- number
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent issue: %v", err)
	}

	seen := make(map[string]bool, workers)
	for number := range results {
		assert.False(t, seen[number], "duplicate number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, workers)

	var stored domain.Branch
	require.NoError(t, db.First(&stored, "id = ?", branch.ID).Error)
	assert.Equal(t, int64(workers), stored.LastInvoiceNumber)
}

func TestNextInvoiceNumberUnknownBranch(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	svc, _, node := setupBranchService(t, fake)

	_, err := svc.NextInvoiceNumber(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.NextInvoiceNumber(context.Background(), "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
