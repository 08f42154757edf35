package offers

import (
	"context"
	"errors"
	"testing"

	"restaurant-offers/internal/models"
)

// fakeResolver resolves a fixed set of offer-type names.
type fakeResolver struct {
	types map[string]int64
	err   error
}

func (f *fakeResolver) OfferTypeID(ctx context.Context, name string) (int64, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	id, ok := f.types[name]
	return id, ok, nil
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{types: map[string]int64{
		"Percent Discount": 2,
		"Surprise Bag":     4,
	}}
}

func validRow() models.PendingOfferRow {
	return models.PendingOfferRow{
		RestaurantID:       "rest-1",
		RestaurantName:     "Chez Nous",
		OfferType:          "Percent Discount",
		Title:              "10% Off Lunch",
		Description:        "Ten percent off all lunch items",
		Summary:            "10% off",
		ValidDaysOfWeek:    "[1,3]",
		ValidStartTime:     "11:00",
		ValidEndTime:       "14:00",
		StartDate:          "2026-01-01",
		EndDate:            "2026-06-30",
		UniqueUsagePerUser: "TRUE",
		Status:             "pending",
	}
}

func TestNormalize(t *testing.T) {
	ctx := context.Background()

	p, err := Normalize(ctx, newFakeResolver(), validRow())
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if p.OfferTypeID != 2 {
		t.Errorf("Expected offer type id 2, got %d", p.OfferTypeID)
	}
	if p.About.En.Title != "10% Off Lunch" {
		t.Errorf("Unexpected title: %q", p.About.En.Title)
	}
	if len(p.ValidDaysOfWeek) != 2 || p.ValidDaysOfWeek[0] != 1 || p.ValidDaysOfWeek[1] != 3 {
		t.Errorf("Unexpected valid days: %v", p.ValidDaysOfWeek)
	}
	if p.ValidStartTime == nil || *p.ValidStartTime != "11:00" {
		t.Errorf("Unexpected start time: %v", p.ValidStartTime)
	}
	if p.EndDate == nil || *p.EndDate != "2026-06-30" {
		t.Errorf("Unexpected end date: %v", p.EndDate)
	}
	if !p.UniqueUsagePerUser {
		t.Error("Expected unique_usage_per_user to be true")
	}
	if p.SurpriseBag != nil {
		t.Error("Expected no surprise bag for a plain discount")
	}
}

func TestNormalizeEmptyOptionalsBecomeNull(t *testing.T) {
	row := validRow()
	row.ValidDaysOfWeek = ""
	row.ValidStartTime = ""
	row.ValidEndTime = ""
	row.EndDate = ""
	row.UniqueUsagePerUser = ""

	p, err := Normalize(context.Background(), newFakeResolver(), row)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if p.ValidDaysOfWeek != nil {
		t.Errorf("Expected nil valid days, got %v", p.ValidDaysOfWeek)
	}
	if p.ValidStartTime != nil || p.ValidEndTime != nil {
		t.Errorf("Expected nil times, got %v / %v", p.ValidStartTime, p.ValidEndTime)
	}
	if p.EndDate != nil {
		t.Errorf("Expected nil end date, got %v", p.EndDate)
	}
	if p.UniqueUsagePerUser {
		t.Error("Expected unique_usage_per_user to default to false")
	}
}

func TestNormalizeEmptyDaysListMeansAllDays(t *testing.T) {
	row := validRow()
	row.ValidDaysOfWeek = "[]"

	p, err := Normalize(context.Background(), newFakeResolver(), row)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if p.ValidDaysOfWeek != nil {
		t.Errorf("Expected nil valid days for empty list, got %v", p.ValidDaysOfWeek)
	}
}

func TestNormalizeUnknownOfferType(t *testing.T) {
	row := validRow()
	row.OfferType = "NotARealType"
	// Broken fields elsewhere must not mask the type error.
	row.ValidDaysOfWeek = "not json"

	_, err := Normalize(context.Background(), newFakeResolver(), row)
	var typeErr *UnknownOfferTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("Expected UnknownOfferTypeError, got %v", err)
	}
	if typeErr.Name != "NotARealType" {
		t.Errorf("Unexpected type name in error: %q", typeErr.Name)
	}
}

func TestNormalizeMalformedFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.PendingOfferRow)
		field  string
	}{
		{"bad days json", func(r *models.PendingOfferRow) { r.ValidDaysOfWeek = "{broken" }, "valid_days_of_week"},
		{"day out of range", func(r *models.PendingOfferRow) { r.ValidDaysOfWeek = "[7]" }, "valid_days_of_week"},
		{"bad start time", func(r *models.PendingOfferRow) { r.ValidStartTime = "25:00" }, "valid_start_time"},
		{"bad end time", func(r *models.PendingOfferRow) { r.ValidEndTime = "noon" }, "valid_end_time"},
		{"missing start date", func(r *models.PendingOfferRow) { r.StartDate = "" }, "start_date"},
		{"bad start date", func(r *models.PendingOfferRow) { r.StartDate = "01/02/2026" }, "start_date"},
		{"bad end date", func(r *models.PendingOfferRow) { r.EndDate = "June 30" }, "end_date"},
		{"bad surprise bag json", func(r *models.PendingOfferRow) { r.SurpriseBagData = "{broken" }, "surprise_bag_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(&row)

			_, err := Normalize(context.Background(), newFakeResolver(), row)
			var fieldErr *MalformedFieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("Expected MalformedFieldError, got %v", err)
			}
			if fieldErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, fieldErr.Field)
			}
		})
	}
}

func TestNormalizeResolverFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("connection refused")}

	_, err := Normalize(context.Background(), resolver, validRow())
	if err == nil {
		t.Fatal("Expected error when the type lookup fails")
	}
	var typeErr *UnknownOfferTypeError
	if errors.As(err, &typeErr) {
		t.Error("A lookup failure must not be reported as an unknown type")
	}
}

func TestParseSurpriseBagDailyQuantityCopy(t *testing.T) {
	sb, err := ParseSurpriseBag(`{"price": 5.99, "estimated_value": 18.0, "daily_quantity": 4}`)
	if err != nil {
		t.Fatalf("ParseSurpriseBag failed: %v", err)
	}
	if sb == nil {
		t.Fatal("Expected a surprise bag")
	}

	if sb.Price != 5.99 || sb.EstimatedValue != 18.0 {
		t.Errorf("Unexpected amounts: %v / %v", sb.Price, sb.EstimatedValue)
	}
	if sb.CurrentDailyQuantity == nil || *sb.CurrentDailyQuantity != 4 {
		t.Fatalf("Expected current_daily_quantity to copy daily_quantity, got %v", sb.CurrentDailyQuantity)
	}

	// The copy must be independent of the source.
	*sb.DailyQuantity = 10
	if *sb.CurrentDailyQuantity != 4 {
		t.Error("current_daily_quantity must not alias daily_quantity")
	}
}

func TestParseSurpriseBagTotalQuantityOnly(t *testing.T) {
	sb, err := ParseSurpriseBag(`{"price": 3.50, "estimated_value": 12.0, "total_quantity": 20}`)
	if err != nil {
		t.Fatalf("ParseSurpriseBag failed: %v", err)
	}

	if sb.DailyQuantity != nil {
		t.Errorf("Expected nil daily_quantity, got %v", *sb.DailyQuantity)
	}
	if sb.CurrentDailyQuantity != nil {
		t.Errorf("Expected nil current_daily_quantity when daily_quantity is absent, got %v", *sb.CurrentDailyQuantity)
	}
	if sb.TotalQuantity == nil || *sb.TotalQuantity != 20 {
		t.Errorf("Unexpected total_quantity: %v", sb.TotalQuantity)
	}
}

func TestParseSurpriseBagEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "{}"} {
		sb, err := ParseSurpriseBag(raw)
		if err != nil {
			t.Errorf("ParseSurpriseBag(%q) failed: %v", raw, err)
		}
		if sb != nil {
			t.Errorf("ParseSurpriseBag(%q) expected nil, got %+v", raw, sb)
		}
	}
}

func TestParseSurpriseBagMissingAmounts(t *testing.T) {
	_, err := ParseSurpriseBag(`{"daily_quantity": 4}`)
	var fieldErr *MalformedFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("Expected MalformedFieldError, got %v", err)
	}
}

func TestParseSheetBool(t *testing.T) {
	trues := []string{"true", "TRUE", "True", "1", "yes", "YES", " true "}
	for _, v := range trues {
		if !parseSheetBool(v) {
			t.Errorf("parseSheetBool(%q) expected true", v)
		}
	}
	falses := []string{"", "false", "FALSE", "0", "no", "maybe"}
	for _, v := range falses {
		if parseSheetBool(v) {
			t.Errorf("parseSheetBool(%q) expected false", v)
		}
	}
}
