package sales

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"controle_vendas/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Validation errors. They abort the operation without touching the ledger.
var (
	ErrMissingField  = errors.New("product name and price are required")
	ErrInvalidPrice  = errors.New("price is not a number")
	ErrNegativePrice = errors.New("price must not be negative")
)

// Price bounds. The exponent and digit checks run first so that absurd
// inputs like "1e50000000" are rejected before any arithmetic on them.
var maxPrice = decimal.New(1, 12)

const (
	minPriceExponent = -8
	maxPriceExponent = 12
	maxPriceDigits   = 24
)

// ErrNoPendingRemoval is returned when confirming a removal that was never
// requested, was already confirmed, or was cancelled.
var ErrNoPendingRemoval = errors.New("no pending removal for token")

// Confirmation is handed out by RequestRemoval. The sale is only removed once
// the token is passed to ConfirmRemoval.
type Confirmation struct {
	Token   string `json:"token"`
	Sale    Sale   `json:"sale"`
	Message string `json:"message"`
}

// Service owns the ledger: an ordered list of sales mirrored to a Storage
// under a single key. Every mutation overwrites the whole blob.
type Service struct {
	storage Storage
	logger  *zap.Logger
	key     string
	now     func() time.Time
	newID   func() string

	mu         sync.Mutex
	sales      []Sale
	pending    map[string]string // token -> sale ID
	generation int
}

// Option configures a Service.
type Option func(*Service)

// WithKey sets the store key holding the ledger.
func WithKey(key string) Option {
	return func(s *Service) { s.key = key }
}

// WithClock sets the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets the generator for sale IDs and removal tokens.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a new Service. The ledger starts empty until Load is called.
func NewService(storage Storage, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		storage: storage,
		logger:  logger,
		key:     DefaultKey,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		pending: map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the store key holding the ledger.
func (s *Service) Key() string { return s.key }

// Load replaces the in-memory ledger with the stored one.
//
// A missing key yields an empty ledger. A read failure or an unparseable blob
// also yields an empty ledger; the error is logged and returned so callers can
// report it, but the service stays usable. An unparseable blob is copied to
// "<key>.corrupt" before anything can overwrite it.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = nil
	s.pending = map[string]string{}
	s.generation++

	blob, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Info("no stored ledger, starting empty", zap.String("key", s.key))
		return nil
	}
	if err != nil {
		s.logger.Error("failed to read ledger", zap.String("key", s.key), zap.Error(err))
		return err
	}

	loaded, err := decodeLedger(blob)
	if err != nil {
		s.logger.Error("failed to parse ledger, starting empty", zap.String("key", s.key), zap.Error(err))
		backupKey := s.key + corruptSuffix
		if berr := s.storage.Set(ctx, backupKey, blob); berr != nil {
			s.logger.Error("failed to keep corrupt ledger", zap.String("key", backupKey), zap.Error(berr))
		} else {
			s.logger.Warn("corrupt ledger kept for recovery", zap.String("key", backupKey), zap.Int("bytes", len(blob)))
		}
		return err
	}

	for i := range loaded {
		// registros antiguos no tienen id
		if loaded[i].ID == "" {
			loaded[i].ID = s.newID()
		}
	}
	s.sales = loaded
	s.logger.Info("ledger loaded", zap.String("key", s.key), zap.Int("sales", len(loaded)))
	return nil
}

// Generation counts calls to Load. Forms use it to drop edit mode on reload.
func (s *Service) Generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Add validates the input, appends a new sale and persists the ledger.
func (s *Service) Add(ctx context.Context, productName, price string) (*Sale, error) {
	name, amount, err := validate(productName, price)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sale := Sale{
		ID:          s.newID(),
		ProductName: name,
		Price:       amount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.sales = append(s.sales, sale)
	s.persist(ctx)

	s.logger.Info("sale created", zap.String("sale_id", sale.ID), zap.String("product_name", name), zap.Stringer("price", amount))
	return &sale, nil
}

// Edit replaces the sale with the given ID in place and persists the ledger.
// The sale keeps its ID, position and CreatedAt.
func (s *Service) Edit(ctx context.Context, id, productName, price string) (*Sale, error) {
	name, amount, err := validate(productName, price)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	s.sales[i].ProductName = name
	s.sales[i].Price = amount
	s.sales[i].UpdatedAt = s.now()
	sale := s.sales[i]
	s.persist(ctx)

	s.logger.Info("sale edited", zap.String("sale_id", id), zap.Int("position", i+1))
	return &sale, nil
}

// RequestRemoval is the first step of a removal. Nothing changes until the
// returned token is confirmed.
func (s *Service) RequestRemoval(id string) (Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Confirmation{}, ErrNotFound
	}
	token := s.newID()
	s.pending[token] = id
	return Confirmation{Token: token, Sale: s.sales[i], Message: MsgConfirmRemoval}, nil
}

// ConfirmRemoval removes the sale bound to token, shifting later sales down
// one position, and persists the ledger.
func (s *Service) ConfirmRemoval(ctx context.Context, token string) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.pending[token]
	if !ok {
		return nil, ErrNoPendingRemoval
	}
	delete(s.pending, token)

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	removed := s.sales[i]
	s.sales = append(s.sales[:i:i], s.sales[i+1:]...)
	s.persist(ctx)

	s.logger.Info("sale removed", zap.String("sale_id", id), zap.Int("position", i+1))
	return &removed, nil
}

// CancelRemoval discards a pending removal. Unknown tokens are ignored.
func (s *Service) CancelRemoval(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, token)
}

// Search returns the sales whose product name contains query, ignoring case,
// in ledger order. An empty query matches every sale.
func (s *Service) Search(query string) []Sale {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	results := make([]Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		if strings.Contains(strings.ToLower(sale.ProductName), q) {
			results = append(results, sale)
		}
	}
	return results
}

// SearchWithMetadata runs Search and summarizes it. The total always covers
// the whole ledger.
func (s *Service) SearchWithMetadata(query, currency string) ([]Sale, SalesMetadata) {
	results := s.Search(query)
	total := s.Total()
	return results, SalesMetadata{
		Quantity:       len(results),
		LedgerSize:     s.Len(),
		Total:          total,
		TotalFormatted: FormatMoney(total, currency),
	}
}

// Total sums the price of every sale in the ledger.
func (s *Service) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, sale := range s.sales {
		total = total.Add(sale.Price)
	}
	return total
}

// All returns a copy of the ledger in display order.
func (s *Service) All() []Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sale(nil), s.sales...)
}

// Len returns the number of sales in the ledger.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

// Get returns the sale with the given ID.
func (s *Service) Get(id string) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	sale := s.sales[i]
	return &sale, nil
}

// At returns the sale at the given 1-based display position.
// Positions shift after a removal; do not keep them across mutations.
func (s *Service) At(position int) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 1 || position > len(s.sales) {
		return nil, ErrNotFound
	}
	sale := s.sales[position-1]
	return &sale, nil
}

func (s *Service) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, sale := range s.sales {
		if sale.ID == id {
			return i
		}
	}
	return -1
}

// persist overwrites the stored ledger. Failures are logged and swallowed:
// the in-memory ledger stays authoritative for the running session.
// The write is detached from ctx cancellation: once a mutation is applied in
// memory it is always written. Callers must hold s.mu.
func (s *Service) persist(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	blob, err := encodeLedger(s.sales)
	if err != nil {
		s.logger.Error("failed to encode ledger", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, s.key, blob); err != nil {
		s.logger.Error("failed to save ledger", zap.String("key", s.key), zap.Int("sales", len(s.sales)), zap.Error(err))
	}
}

// validate trims the inputs and parses the price.
func validate(productName, price string) (string, decimal.Decimal, error) {
	name := strings.TrimSpace(productName)
	raw := strings.TrimSpace(price)
	if name == "" || raw == "" {
		return "", decimal.Zero, ErrMissingField
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return "", decimal.Zero, ErrInvalidPrice
	}
	if amount.IsNegative() {
		return "", decimal.Zero, ErrNegativePrice
	}
	if exp := amount.Exponent(); exp < minPriceExponent || exp > maxPriceExponent {
		return "", decimal.Zero, ErrInvalidPrice
	}
	if amount.NumDigits() > maxPriceDigits || amount.GreaterThan(maxPrice) {
		return "", decimal.Zero, ErrInvalidPrice
	}
	return name, amount, nil
}
