package database

import (
	"context"
	"path/filepath"
	"testing"

	"restaurant-offers/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open("", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOfferTypesSeeded(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	types, err := db.OfferTypes(ctx)
	if err != nil {
		t.Fatalf("OfferTypes failed: %v", err)
	}
	if len(types) != len(DefaultOfferTypes) {
		t.Fatalf("Expected %d offer types, got %d", len(DefaultOfferTypes), len(types))
	}
	for i, want := range DefaultOfferTypes {
		if types[i].En != want.En {
			t.Errorf("Offer type %d is %q, want %q", i, types[i].En, want.En)
		}
	}
}

func TestOfferTypeID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, ok, err := db.OfferTypeID(ctx, "Surprise Bag")
	if err != nil {
		t.Fatalf("OfferTypeID failed: %v", err)
	}
	if !ok || id == 0 {
		t.Errorf("Expected a match for Surprise Bag, got ok=%v id=%d", ok, id)
	}

	_, ok, err = db.OfferTypeID(ctx, "surprise bag")
	if err != nil {
		t.Fatalf("OfferTypeID failed: %v", err)
	}
	if ok {
		t.Error("Lookup must be case-sensitive; lowercase name should not match")
	}

	_, ok, err = db.OfferTypeID(ctx, "NotARealType")
	if err != nil {
		t.Fatalf("OfferTypeID failed: %v", err)
	}
	if ok {
		t.Error("Expected no match for an unknown type")
	}
}

func insertTestOffer(t *testing.T, db *DB, p *models.OfferInsert) string {
	t.Helper()
	ctx := context.Background()

	tx, err := db.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	defer tx.Rollback()

	id, err := db.InsertOffer(ctx, tx, p)
	if err != nil {
		t.Fatalf("InsertOffer failed: %v", err)
	}
	if p.SurpriseBag != nil {
		if err := db.InsertSurpriseBag(ctx, tx, id, p.SurpriseBag); err != nil {
			t.Fatalf("InsertSurpriseBag failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	return id
}

func TestOfferExists(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	typeID, ok, err := db.OfferTypeID(ctx, "Percent Discount")
	if err != nil || !ok {
		t.Fatalf("Failed to resolve offer type: ok=%v err=%v", ok, err)
	}

	insertTestOffer(t, db, &models.OfferInsert{
		RestaurantID:  "rest-1",
		About:         models.About{En: models.AboutText{Title: "10% Off Lunch"}},
		OfferTypeID:   typeID,
		OfferTypeName: "Percent Discount",
		StartDate:     "2026-01-01",
	})

	tests := []struct {
		restaurantID, title, typeName string
		want                          bool
	}{
		{"rest-1", "10% Off Lunch", "Percent Discount", true},
		{"rest-2", "10% Off Lunch", "Percent Discount", false},
		{"rest-1", "20% Off Lunch", "Percent Discount", false},
		{"rest-1", "10% Off Lunch", "Special", false},
		{"rest-1", "10% off lunch", "Percent Discount", false}, // case-sensitive
	}
	for _, tt := range tests {
		got, err := db.OfferExists(ctx, tt.restaurantID, tt.title, tt.typeName)
		if err != nil {
			t.Fatalf("OfferExists(%q, %q, %q) failed: %v", tt.restaurantID, tt.title, tt.typeName, err)
		}
		if got != tt.want {
			t.Errorf("OfferExists(%q, %q, %q) = %v, want %v", tt.restaurantID, tt.title, tt.typeName, got, tt.want)
		}
	}
}

func TestActiveOffersWithSurpriseBagAndRedemptions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	typeID, ok, err := db.OfferTypeID(ctx, "Surprise Bag")
	if err != nil || !ok {
		t.Fatalf("Failed to resolve offer type: ok=%v err=%v", ok, err)
	}

	daily := 4
	current := 4
	offerID := insertTestOffer(t, db, &models.OfferInsert{
		RestaurantID:    "rest-1",
		About:           models.About{En: models.AboutText{Title: "Evening Bag", Description: "Whatever is left"}},
		OfferTypeID:     typeID,
		OfferTypeName:   "Surprise Bag",
		ValidDaysOfWeek: []int{4, 5},
		StartDate:       "2026-01-01",
		SurpriseBag: &models.SurpriseBagInsert{
			Price:                5.99,
			EstimatedValue:       18.0,
			DailyQuantity:        &daily,
			CurrentDailyQuantity: &current,
		},
	})

	if err := db.InsertRedemption(ctx, offerID, "profile-1"); err != nil {
		t.Fatalf("InsertRedemption failed: %v", err)
	}
	if err := db.InsertRedemption(ctx, offerID, "profile-2"); err != nil {
		t.Fatalf("InsertRedemption failed: %v", err)
	}

	offers, err := db.ActiveOffers(ctx, "rest-1")
	if err != nil {
		t.Fatalf("ActiveOffers failed: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("Expected 1 offer, got %d", len(offers))
	}

	o := offers[0]
	if o.ID != offerID {
		t.Errorf("Unexpected offer id: %q", o.ID)
	}
	if o.About.En.Title != "Evening Bag" {
		t.Errorf("Unexpected title: %q", o.About.En.Title)
	}
	if o.OfferTypeName != "Surprise Bag" {
		t.Errorf("Unexpected type name: %q", o.OfferTypeName)
	}
	if len(o.ValidDaysOfWeek) != 2 || o.ValidDaysOfWeek[0] != 4 {
		t.Errorf("Unexpected valid days: %v", o.ValidDaysOfWeek)
	}
	if o.RedemptionCount != 2 {
		t.Errorf("Expected 2 redemptions, got %d", o.RedemptionCount)
	}
	if o.Price == nil || *o.Price != 5.99 {
		t.Errorf("Unexpected price: %v", o.Price)
	}
	if o.CurrentDailyQuantity == nil || *o.CurrentDailyQuantity != 4 {
		t.Errorf("Unexpected current daily quantity: %v", o.CurrentDailyQuantity)
	}
	if o.TotalQuantity != nil {
		t.Errorf("Expected nil total quantity, got %v", *o.TotalQuantity)
	}

	other, err := db.ActiveOffers(ctx, "rest-2")
	if err != nil {
		t.Fatalf("ActiveOffers failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no offers for another restaurant, got %d", len(other))
	}
}
