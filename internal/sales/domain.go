package sales

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sale represents one recorded sale: a product name and its price.
type Sale struct {
	ID          string
	ProductName string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// saleJSON is the wire shape of a Sale, shared by the store blob and the API.
// price is written as a plain JSON number.
type saleJSON struct {
	ID          string      `json:"id,omitempty"`
	ProductName string      `json:"productName"`
	Price       json.Number `json:"price"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
}

func (s Sale) MarshalJSON() ([]byte, error) {
	j := saleJSON{
		ID:          s.ID,
		ProductName: s.ProductName,
		Price:       json.Number(s.Price.String()),
	}
	if !s.CreatedAt.IsZero() {
		j.CreatedAt = &s.CreatedAt
	}
	if !s.UpdatedAt.IsZero() {
		j.UpdatedAt = &s.UpdatedAt
	}
	return json.Marshal(j)
}

func (s *Sale) UnmarshalJSON(b []byte) error {
	var j saleJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	price := decimal.Zero
	if j.Price != "" {
		p, err := decimal.NewFromString(string(j.Price))
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", j.Price, err)
		}
		price = p
	}
	*s = Sale{
		ID:          j.ID,
		ProductName: j.ProductName,
		Price:       price,
	}
	if j.CreatedAt != nil {
		s.CreatedAt = *j.CreatedAt
	}
	if j.UpdatedAt != nil {
		s.UpdatedAt = *j.UpdatedAt
	}
	return nil
}

// SalesMetadata summarizes a search result. Total is computed over the whole
// ledger, not over the filtered results.
type SalesMetadata struct {
	Quantity       int             `json:"quantity"`
	LedgerSize     int             `json:"ledger_size"`
	Total          decimal.Decimal `json:"total"`
	TotalFormatted string          `json:"total_formatted"`
}
