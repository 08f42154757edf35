package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"restaurant-offers/internal/cache"
	"restaurant-offers/internal/database"
	"restaurant-offers/internal/events"
	"restaurant-offers/internal/metrics"
	"restaurant-offers/internal/models"
	"restaurant-offers/internal/offers"
	"restaurant-offers/internal/reconcile"
	"restaurant-offers/internal/sheet"
	"restaurant-offers/internal/validation"
)

// Service provides the operator-facing business logic: submitting offers
// into the pending queue, reading pending and active offers, and
// triggering reconciliation. Events and Metrics are optional.
type Service struct {
	db       *database.DB
	sheet    sheet.Store
	cache    cache.Cache
	cacheTTL time.Duration
	rec      *reconcile.Reconciler
	Events   *events.Manager
	Metrics  *metrics.Registry
}

// NewService creates a new service instance.
func NewService(db *database.DB, s sheet.Store, c cache.Cache, cacheTTL time.Duration) *Service {
	return &Service{
		db:       db,
		sheet:    s,
		cache:    c,
		cacheTTL: cacheTTL,
		rec:      reconcile.New(s, db),
	}
}

// SubmitOffer validates a submission and appends it to the pending
// sheet with status "pending". The offer only reaches the relational
// store later, through admin approval.
func (s *Service) SubmitOffer(ctx context.Context, restaurantID string, req models.SubmitOfferRequest) error {
	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeString(req.Description)
	req.Summary = validation.SanitizeString(req.Summary)
	req.OfferType = validation.SanitizeString(req.OfferType)
	req.RestaurantName = validation.SanitizeString(req.RestaurantName)

	if err := validation.ValidateSubmission(req); err != nil {
		return err
	}

	// Reject unknown types at submission time instead of letting the
	// row sit in the queue until approval fails it.
	_, ok, err := s.db.OfferTypeID(ctx, req.OfferType)
	if err != nil {
		return fmt.Errorf("failed to verify offer type: %w", err)
	}
	if !ok {
		return &validation.ValidationError{Field: "offer_type", Message: "unknown offer type"}
	}

	row, err := buildPendingRow(restaurantID, req)
	if err != nil {
		return err
	}

	// Transient sheet failures happen; retry the append once.
	if err := s.sheet.Append(ctx, row); err != nil {
		if err := s.sheet.Append(ctx, row); err != nil {
			return fmt.Errorf("failed to add offer to pending sheet: %w", err)
		}
	}

	if s.Metrics != nil {
		s.Metrics.OffersSubmitted.Inc()
	}
	if s.Events != nil {
		s.Events.PublishOfferSubmitted(ctx, restaurantID, req.Title, req.OfferType)
	}
	return nil
}

// PendingOffers returns the restaurant's pending rows as normalized
// projections. Malformed rows are skipped rather than failing the page.
func (s *Service) PendingOffers(ctx context.Context, restaurantID string) ([]models.PendingOffer, error) {
	records, err := s.sheet.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending sheet: %w", err)
	}

	var out []models.PendingOffer
	for _, row := range records {
		if row.RestaurantID != restaurantID {
			continue
		}
		if !sheet.IsPending(row.Status) {
			continue
		}
		p, err := offers.ProjectPending(row)
		if err != nil {
			log.Printf("skipping malformed pending row %d: %v", row.Index, err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ActiveOffers returns the restaurant's approved offers, served from the
// read cache when fresh.
func (s *Service) ActiveOffers(ctx context.Context, restaurantID string) ([]models.Offer, error) {
	key := "active-offers:" + restaurantID

	var cached []models.Offer
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return cached, nil
	}

	result, err := s.db.ActiveOffers(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active offers: %w", err)
	}

	if err := cache.SetJSON(ctx, s.cache, key, result, s.cacheTTL); err != nil {
		log.Printf("failed to cache active offers for %s: %v", restaurantID, err)
	}
	return result, nil
}

// OfferTypes returns the offer-type lookup table, cached.
func (s *Service) OfferTypes(ctx context.Context) ([]models.OfferType, error) {
	const key = "offer-types"

	var cached []models.OfferType
	if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
		return cached, nil
	}

	types, err := s.db.OfferTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer types: %w", err)
	}

	if err := cache.SetJSON(ctx, s.cache, key, types, s.cacheTTL); err != nil {
		log.Printf("failed to cache offer types: %v", err)
	}
	return types, nil
}

// Sync reconciles the restaurant's pending rows against the relational
// store and returns how many rows were removed. It never fails the
// caller; store trouble just leaves rows for the next pass.
func (s *Service) Sync(ctx context.Context, restaurantID string) int {
	deleted := s.rec.Run(ctx, restaurantID)

	if deleted > 0 && s.Metrics != nil {
		s.Metrics.RowsReconciled.Add(float64(deleted))
	}
	if s.Events != nil {
		s.Events.PublishReconcileCompleted(ctx, restaurantID, deleted)
	}
	return deleted
}

// buildPendingRow flattens a validated submission into sheet cells,
// mirroring what the normalizer expects back out: JSON-encoded lists and
// objects, empty strings for absent optionals, TRUE/FALSE booleans.
func buildPendingRow(restaurantID string, req models.SubmitOfferRequest) (models.PendingOfferRow, error) {
	days := "[]"
	if len(req.ValidDaysOfWeek) > 0 {
		data, err := json.Marshal(req.ValidDaysOfWeek)
		if err != nil {
			return models.PendingOfferRow{}, fmt.Errorf("failed to encode valid days: %w", err)
		}
		days = string(data)
	}

	sbData := ""
	if req.SurpriseBag != nil {
		data, err := json.Marshal(req.SurpriseBag)
		if err != nil {
			return models.PendingOfferRow{}, fmt.Errorf("failed to encode surprise bag: %w", err)
		}
		sbData = string(data)
	}

	unique := "FALSE"
	if req.UniqueUsagePerUser {
		unique = "TRUE"
	}

	return models.PendingOfferRow{
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		RestaurantID:       restaurantID,
		RestaurantName:     req.RestaurantName,
		OfferType:          req.OfferType,
		Title:              req.Title,
		Description:        req.Description,
		Summary:            req.Summary,
		ValidDaysOfWeek:    days,
		ValidStartTime:     req.ValidStartTime,
		ValidEndTime:       req.ValidEndTime,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		UniqueUsagePerUser: unique,
		SurpriseBagData:    sbData,
		Status:             sheet.StatusPending,
	}, nil
}
