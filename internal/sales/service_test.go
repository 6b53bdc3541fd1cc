package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"controle_vendas/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// sequentialIDs returns a generator producing id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(t *testing.T, storage Storage) *Service {
	t.Helper()
	if storage == nil {
		storage = store.NewMemory()
	}
	return NewService(storage, zaptest.NewLogger(t),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	)
}

// flakyStorage wraps a Memory store and can be told to fail.
type flakyStorage struct {
	*store.Memory
	failGet bool
	failSet bool
	sets    int
}

func (f *flakyStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("disk unavailable")
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyStorage) Set(ctx context.Context, key string, blob []byte) error {
	f.sets++
	if f.failSet {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, blob)
}

func names(sales []Sale) []string {
	out := make([]string, len(sales))
	for i, s := range sales {
		out[i] = s.ProductName
	}
	return out
}

func TestNewService(t *testing.T) {
	svc := NewService(store.NewMemory(), nil)

	require.NotNil(t, svc)
	assert.NotNil(t, svc.logger, "nil logger should fall back to a no-op logger")
	assert.Equal(t, DefaultKey, svc.Key())
	assert.Equal(t, 0, svc.Len())
}

func TestLoad_MissingKeyStartsEmpty(t *testing.T) {
	svc := newTestService(t, nil)

	require.NoError(t, svc.Load(context.Background()))
	assert.Equal(t, 0, svc.Len())
}

func TestLoad_LegacyBlobWithoutIDs(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte(`[{"productName":"Pen","price":1.5},{"productName":"Café","price":4}]`)))

	svc := newTestService(t, mem)
	require.NoError(t, svc.Load(ctx))

	all := svc.All()
	require.Len(t, all, 2)
	assert.Equal(t, []string{"Pen", "Café"}, names(all))
	assert.Equal(t, "id-1", all[0].ID)
	assert.Equal(t, "id-2", all[1].ID)
	assert.True(t, all[0].Price.Equal(decimal.RequireFromString("1.5")))
}

func TestLoad_CorruptBlobIsKept(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte(`[{"productName":`)))

	svc := newTestService(t, mem)
	err := svc.Load(ctx)

	assert.ErrorIs(t, err, ErrCorruptLedger)
	assert.Equal(t, 0, svc.Len())

	backup, err := mem.Get(ctx, DefaultKey+".corrupt")
	require.NoError(t, err)
	assert.Equal(t, `[{"productName":`, string(backup))

	// the ledger is still usable after a corrupt load
	_, err = svc.Add(ctx, "Pen", "1.5")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Len())
}

func TestLoad_ReadFailureStartsEmpty(t *testing.T) {
	storage := &flakyStorage{Memory: store.NewMemory(), failGet: true}
	svc := newTestService(t, storage)

	err := svc.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, svc.Len())
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc := newTestService(t, mem)

	_, err := svc.Add(ctx, "Pen", "1.50")
	require.NoError(t, err)
	sale, err := svc.Add(ctx, "  Notebook ", "3.0")
	require.NoError(t, err)

	assert.Equal(t, "id-2", sale.ID)
	assert.Equal(t, "Notebook", sale.ProductName)
	assert.Equal(t, fixedNow, sale.CreatedAt)
	assert.Equal(t, []string{"Pen", "Notebook"}, names(svc.All()))
	assert.Equal(t, "4.5", svc.Total().String())

	// every mutation rewrites the whole blob
	blob, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"id-1","productName":"Pen","price":1.5,"createdAt":"2024-05-10T12:00:00Z","updatedAt":"2024-05-10T12:00:00Z"},
		{"id":"id-2","productName":"Notebook","price":3,"createdAt":"2024-05-10T12:00:00Z","updatedAt":"2024-05-10T12:00:00Z"}
	]`, string(blob))
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name        string
		productName string
		price       string
		wantErr     error
	}{
		{"missing name", "", "1.5", ErrMissingField},
		{"blank name", "   ", "1.5", ErrMissingField},
		{"missing price", "Pen", "", ErrMissingField},
		{"not a number", "Pen", "abc", ErrInvalidPrice},
		{"trailing garbage", "Pen", "12abc", ErrInvalidPrice},
		{"negative", "Pen", "-1", ErrNegativePrice},
		{"huge exponent", "Pen", "1e50000000", ErrInvalidPrice},
		{"tiny exponent", "Pen", "1e-50000000", ErrInvalidPrice},
		{"above maximum", "Pen", "100000000000000000000", ErrInvalidPrice},
		{"too many decimals", "Pen", "0.123456789", ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &flakyStorage{Memory: store.NewMemory()}
			svc := newTestService(t, storage)

			sale, err := svc.Add(context.Background(), tt.productName, tt.price)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
			assert.Nil(t, sale)
			assert.Equal(t, 0, svc.Len())
			assert.Equal(t, 0, storage.sets, "validation failures must not touch the store")
		})
	}
}

func TestAdd_PriceAtMaximum(t *testing.T) {
	svc := newTestService(t, nil)

	sale, err := svc.Add(context.Background(), "Casa", "1000000000000.00")
	require.NoError(t, err)
	assert.True(t, sale.Price.Equal(maxPrice))
}

func TestMutations_PersistWithCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem := store.NewMemory()
	svc := newTestService(t, mem)

	_, err := svc.Add(ctx, "Pen", "1.5")
	require.NoError(t, err)
	blob, err := mem.Get(context.Background(), DefaultKey)
	require.NoError(t, err, "a canceled request must not lose the write")
	assert.Contains(t, string(blob), `"productName":"Pen"`)

	_, err = svc.Edit(ctx, "id-1", "Caneta", "2")
	require.NoError(t, err)
	conf, err := svc.RequestRemoval("id-1")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Lápis", "1")
	require.NoError(t, err)
	_, err = svc.ConfirmRemoval(ctx, conf.Token)
	require.NoError(t, err)

	reloaded := newTestService(t, mem)
	require.NoError(t, reloaded.Load(context.Background()))
	assert.Equal(t, []string{"Lápis"}, names(reloaded.All()))
}

func TestAdd_PersistFailureIsLoggedAndSwallowed(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	storage := &flakyStorage{Memory: store.NewMemory(), failSet: true}
	svc := NewService(storage, zap.New(core))

	sale, err := svc.Add(context.Background(), "Pen", "1.5")

	require.NoError(t, err)
	assert.Equal(t, "Pen", sale.ProductName)
	assert.Equal(t, 1, svc.Len(), "in-memory state stays authoritative")
	assert.Equal(t, 1, logs.FilterMessage("failed to save ledger").Len())
}

func TestEdit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	for _, n := range []string{"Pen", "Notebook", "Eraser"} {
		_, err := svc.Add(ctx, n, "1")
		require.NoError(t, err)
	}
	before := svc.All()

	later := fixedNow.Add(time.Hour)
	svc.now = func() time.Time { return later }
	edited, err := svc.Edit(ctx, "id-2", "Caderno", "7.25")
	require.NoError(t, err)

	after := svc.All()
	require.Len(t, after, 3)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
	assert.Equal(t, "id-2", after[1].ID)
	assert.Equal(t, "Caderno", after[1].ProductName)
	assert.Equal(t, "7.25", after[1].Price.String())
	assert.Equal(t, fixedNow, edited.CreatedAt)
	assert.Equal(t, later, edited.UpdatedAt)
}

func TestEdit_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	_, err := svc.Add(ctx, "Pen", "1")
	require.NoError(t, err)

	_, err = svc.Edit(ctx, "nope", "Pen", "2")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Edit(ctx, "id-1", "", "2")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, "1", svc.All()[0].Price.String())
}

func TestRemoval_TwoStep(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	svc := newTestService(t, mem)
	for _, n := range []string{"Pen", "Notebook", "Eraser"} {
		_, err := svc.Add(ctx, n, "1")
		require.NoError(t, err)
	}

	conf, err := svc.RequestRemoval("id-1")
	require.NoError(t, err)
	assert.Equal(t, MsgConfirmRemoval, conf.Message)
	assert.Equal(t, "Pen", conf.Sale.ProductName)
	assert.Equal(t, 3, svc.Len(), "nothing changes before confirmation")

	removed, err := svc.ConfirmRemoval(ctx, conf.Token)
	require.NoError(t, err)
	assert.Equal(t, "id-1", removed.ID)
	assert.Equal(t, []string{"Notebook", "Eraser"}, names(svc.All()))

	at1, err := svc.At(1)
	require.NoError(t, err)
	assert.Equal(t, "Notebook", at1.ProductName, "later positions shift down")

	// tokens are single use
	_, err = svc.ConfirmRemoval(ctx, conf.Token)
	assert.ErrorIs(t, err, ErrNoPendingRemoval)

	reloaded := newTestService(t, mem)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []string{"Notebook", "Eraser"}, names(reloaded.All()))
}

func TestRemoval_CancelLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	_, err := svc.Add(ctx, "Pen", "1")
	require.NoError(t, err)

	conf, err := svc.RequestRemoval("id-1")
	require.NoError(t, err)
	svc.CancelRemoval(conf.Token)

	_, err = svc.ConfirmRemoval(ctx, conf.Token)
	assert.ErrorIs(t, err, ErrNoPendingRemoval)
	assert.Equal(t, 1, svc.Len())

	_, err = svc.RequestRemoval("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoval_SaleAlreadyGone(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	_, err := svc.Add(ctx, "Pen", "1")
	require.NoError(t, err)

	first, err := svc.RequestRemoval("id-1")
	require.NoError(t, err)
	second, err := svc.RequestRemoval("id-1")
	require.NoError(t, err)

	_, err = svc.ConfirmRemoval(ctx, first.Token)
	require.NoError(t, err)
	_, err = svc.ConfirmRemoval(ctx, second.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_DropsPendingRemovals(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	_, err := svc.Add(ctx, "Pen", "1")
	require.NoError(t, err)
	conf, err := svc.RequestRemoval("id-1")
	require.NoError(t, err)

	require.NoError(t, svc.Load(ctx))

	_, err = svc.ConfirmRemoval(ctx, conf.Token)
	assert.ErrorIs(t, err, ErrNoPendingRemoval)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	for _, n := range []string{"Caneta Azul", "Caderno", "caneta vermelha", "Borracha"} {
		_, err := svc.Add(ctx, n, "2")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Caneta Azul", "Caderno", "caneta vermelha", "Borracha"}, names(svc.Search("")))
	assert.Equal(t, []string{"Caneta Azul", "caneta vermelha"}, names(svc.Search("CANETA")))
	assert.Empty(t, svc.Search("lápis"))

	results, meta := svc.SearchWithMetadata("caneta", "BRL")
	assert.Len(t, results, 2)
	assert.Equal(t, 2, meta.Quantity)
	assert.Equal(t, 4, meta.LedgerSize)
	assert.Equal(t, "8", meta.Total.String(), "total covers the whole ledger")
}

func TestAt_OutOfRange(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.At(0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.At(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExample_AddToExistingLedger(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte(`[{"productName":"Pen","price":1.50}]`)))
	svc := newTestService(t, mem)
	require.NoError(t, svc.Load(ctx))

	_, err := svc.Add(ctx, "Notebook", "3.0")
	require.NoError(t, err)

	all := svc.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Pen", all[0].ProductName)
	assert.True(t, all[0].Price.Equal(decimal.NewFromFloat(1.5)))
	assert.Equal(t, "Notebook", all[1].ProductName)
	assert.True(t, all[1].Price.Equal(decimal.NewFromFloat(3.0)))
	assert.True(t, svc.Total().Equal(decimal.NewFromFloat(4.5)))
}
