package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products. Names are unique under case-insensitive
// comparison; the constraint lives in the database.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Product is a catalog entry. Categories holds the full association set:
// every mutation that supplies categories replaces the set wholesale,
// nothing is merged.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"image_url,omitempty" db:"image_url"`
	Date        time.Time       `json:"date" db:"date"`
	Categories  []Category      `json:"categories"`
}

// CategoryIDs returns the ids of the product's current association set.
func (p *Product) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
