package sequence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupAllocator(t *testing.T) (*Allocator, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Counter{}))

	alloc := &Allocator{
		db:   db,
		log:  zaptest.NewLogger(t),
		keys: NewKeyedMutex(),
	}
	return alloc, db
}

func TestAllocatorNextIsMonotonic(t *testing.T) {
	alloc, _ := setupAllocator(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := alloc.Next(ctx, "test_counter", nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestAllocatorSeedRunsOnce(t *testing.T) {
	alloc, _ := setupAllocator(t)
	ctx := context.Background()

	calls := 0
	seed := func(ctx context.Context, tx *gorm.DB) (int64, error) {
		calls++
		return 41, nil
	}

	got, err := alloc.Next(ctx, "seeded", seed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	got, err = alloc.Next(ctx, "seeded", seed)
	require.NoError(t, err)
	assert.Equal(t, int64(43), got)
	assert.Equal(t, 1, calls)
}

func TestAllocatorCountersAreIndependent(t *testing.T) {
	alloc, _ := setupAllocator(t)
	ctx := context.Background()

	first, err := alloc.Next(ctx, "a", nil)
	require.NoError(t, err)
	second, err := alloc.Next(ctx, "b", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(1), second)
}

func TestAllocatorConcurrentNext(t *testing.T) {
	alloc, _ := setupAllocator(t)

	const workers = 25

	var wg sync.WaitGroup
	values := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := alloc.Next(context.Background(), "shared", nil)
			if err == nil {
				values <- value
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, workers)
	for value := range values {
		assert.False(t, seen[value], "duplicate value %d", value)
		seen[value] = true
	}
	assert.Len(t, seen, workers)
}

func TestDraftAllocatorFormat(t *testing.T) {
	alloc, db := setupAllocator(t)
	// The seed scans the invoices table for existing draft numbers.
	require.NoError(t, db.Exec(`CREATE TABLE invoices (id BIGINT PRIMARY KEY, invoice_number TEXT NOT NULL)`).Error)

	draft := &DraftAllocator{alloc: alloc}

	number, err := draft.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", number)

	number, err = draft.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-00002", number)
}

func TestDraftAllocatorSeedsFromExistingNumbers(t *testing.T) {
	alloc, db := setupAllocator(t)
	require.NoError(t, db.Exec(`CREATE TABLE invoices (id BIGINT PRIMARY KEY, invoice_number TEXT NOT NULL)`).Error)
	require.NoError(t, db.Exec(`INSERT INTO invoices (id, invoice_number) VALUES (1, 'INV-00007'), (2, 'INV-00012'), (3, 'legacy-3')`).Error)

	draft := &DraftAllocator{alloc: alloc}

	number, err := draft.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-00013", number)
}
