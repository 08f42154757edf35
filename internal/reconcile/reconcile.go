package reconcile

import (
	"context"
	"log"

	"restaurant-offers/internal/sheet"
)

// OfferChecker is the single relational-store query reconciliation
// needs: does an offer with this natural key already exist.
type OfferChecker interface {
	OfferExists(ctx context.Context, restaurantID, title, typeName string) (bool, error)
}

// Reconciler removes pending sheet rows whose offer already exists in
// the relational store, keeping the two stores convergent after offers
// are approved through the batch tool or by hand. It runs on page load,
// so it must never fail the caller: store failures are logged and the
// affected rows (or the whole pass) are skipped.
type Reconciler struct {
	sheet sheet.Store
	db    OfferChecker
}

// New creates a reconciler over the given stores.
func New(s sheet.Store, db OfferChecker) *Reconciler {
	return &Reconciler{sheet: s, db: db}
}

// Run reconciles one restaurant's pending rows and returns how many it
// deleted. Matching is exact string equality on
// (restaurant_id, title, offer_type display name). Indices are collected
// first and deleted in descending order; deleting low rows first would
// shift the indices computed for the rows below them.
func (r *Reconciler) Run(ctx context.Context, restaurantID string) int {
	records, err := r.sheet.Records(ctx)
	if err != nil {
		log.Printf("reconcile: sheet unavailable, skipping: %v", err)
		return 0
	}

	var toDelete []int
	for _, row := range records {
		if row.RestaurantID != restaurantID {
			continue
		}
		if !sheet.IsPending(row.Status) {
			continue
		}

		exists, err := r.db.OfferExists(ctx, row.RestaurantID, row.Title, row.OfferType)
		if err != nil {
			// A row is only deleted on a positive match; on a failed
			// check it stays put and the next run retries.
			log.Printf("reconcile: existence check failed for %q, skipping row: %v", row.Title, err)
			continue
		}
		if exists {
			toDelete = append(toDelete, row.Index)
		}
	}

	deleted := 0
	for i := len(toDelete) - 1; i >= 0; i-- {
		if err := r.sheet.DeleteRow(ctx, toDelete[i]); err != nil {
			log.Printf("reconcile: failed to delete row %d, stopping: %v", toDelete[i], err)
			break
		}
		deleted++
	}
	return deleted
}
