package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a sale with the given ID or position is not found.
var ErrNotFound = errors.New("sale not found")

// ErrCorruptLedger is returned by Load when the stored blob is not a valid ledger.
var ErrCorruptLedger = errors.New("corrupt ledger blob")

// DefaultKey is the store key holding the whole ledger.
const DefaultKey = "@sales_data"

// corruptSuffix is appended to the ledger key to keep an unreadable blob around.
const corruptSuffix = ".corrupt"

// Storage is the key-value blob store the ledger is mirrored to.
// Get must return an error matching store.ErrNotFound for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
}

// encodeLedger serializes the ledger as a JSON array of sales.
func encodeLedger(sales []Sale) ([]byte, error) {
	if sales == nil {
		sales = []Sale{}
	}
	return json.Marshal(sales)
}

// decodeLedger parses a blob written by encodeLedger. Blobs written before
// sales carried an id are accepted; callers assign ids to those records.
func decodeLedger(blob []byte) ([]Sale, error) {
	var sales []Sale
	if err := json.Unmarshal(blob, &sales); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptLedger, err)
	}
	return sales, nil
}
