package models

import "shelfpulse/internal/features"

type Product struct {
	ID       int64   `db:"id"`
	SKU      string  `db:"sku"`
	Category *string `db:"category"`
	// Features holds the non-null feature columns keyed by feature name.
	Features features.Record
}
