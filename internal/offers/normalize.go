package offers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"restaurant-offers/internal/models"
)

// TypeResolver resolves an offer-type display name to its id. The second
// return value reports whether a row matched.
type TypeResolver interface {
	OfferTypeID(ctx context.Context, name string) (int64, bool, error)
}

var timeOfDayRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

const dateLayout = "2006-01-02"

// Normalize converts a raw pending row into a validated insert payload.
// It resolves the offer type first (so an unknown type is reported even
// when other fields are broken, matching operator expectations), then
// parses the JSON sub-fields and coerces empty strings to nulls. The only
// side effect is the read-only type lookup.
func Normalize(ctx context.Context, types TypeResolver, row models.PendingOfferRow) (*models.OfferInsert, error) {
	typeID, ok, err := types.OfferTypeID(ctx, row.OfferType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve offer type: %w", err)
	}
	if !ok {
		return nil, &UnknownOfferTypeError{
			Name:         row.OfferType,
			Title:        row.Title,
			RestaurantID: row.RestaurantID,
		}
	}

	days, err := parseValidDays(row.ValidDaysOfWeek)
	if err != nil {
		return nil, err
	}

	startTime, err := parseTimeOfDay("valid_start_time", row.ValidStartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := parseTimeOfDay("valid_end_time", row.ValidEndTime)
	if err != nil {
		return nil, err
	}

	startDate := strings.TrimSpace(row.StartDate)
	if startDate == "" {
		return nil, &MalformedFieldError{Field: "start_date", Err: errors.New("is required")}
	}
	if _, err := time.Parse(dateLayout, startDate); err != nil {
		return nil, &MalformedFieldError{Field: "start_date", Err: err}
	}

	var endDate *string
	if d := strings.TrimSpace(row.EndDate); d != "" {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, &MalformedFieldError{Field: "end_date", Err: err}
		}
		endDate = &d
	}

	sb, err := ParseSurpriseBag(row.SurpriseBagData)
	if err != nil {
		return nil, err
	}

	return &models.OfferInsert{
		RestaurantID: row.RestaurantID,
		About: models.About{
			En: models.AboutText{
				Title:       row.Title,
				Description: row.Description,
				Summary:     row.Summary,
			},
		},
		OfferTypeID:        typeID,
		OfferTypeName:      row.OfferType,
		ValidDaysOfWeek:    days,
		ValidStartTime:     startTime,
		ValidEndTime:       endTime,
		StartDate:          startDate,
		EndDate:            endDate,
		UniqueUsagePerUser: parseSheetBool(row.UniqueUsagePerUser),
		SurpriseBag:        sb,
	}, nil
}

// parseValidDays decodes the JSON weekday list. An empty cell or empty
// list means the offer is valid every day and normalizes to nil.
func parseValidDays(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var days []int
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, &MalformedFieldError{Field: "valid_days_of_week", Err: err}
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, &MalformedFieldError{
				Field: "valid_days_of_week",
				Err:   fmt.Errorf("weekday %d out of range 0-6", d),
			}
		}
	}
	if len(days) == 0 {
		return nil, nil
	}
	return days, nil
}

// parseTimeOfDay coerces an empty cell to null and validates HH:MM
// (seconds tolerated, the sheet occasionally carries them).
func parseTimeOfDay(field, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !timeOfDayRegex.MatchString(raw) {
		return nil, &MalformedFieldError{
			Field: field,
			Err:   fmt.Errorf("%q is not a valid time of day", raw),
		}
	}
	return &raw, nil
}

// ParseSurpriseBag decodes the surprise-bag JSON object. The
// current_daily_quantity counter is initialized as a copy of
// daily_quantity; the two are independent fields from then on.
func ParseSurpriseBag(raw string) (*models.SurpriseBagInsert, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return nil, nil
	}

	var decoded struct {
		Price          *float64 `json:"price"`
		EstimatedValue *float64 `json:"estimated_value"`
		DailyQuantity  *int     `json:"daily_quantity"`
		TotalQuantity  *int     `json:"total_quantity"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &MalformedFieldError{Field: "surprise_bag_data", Err: err}
	}
	if decoded.Price == nil || decoded.EstimatedValue == nil {
		return nil, &MalformedFieldError{
			Field: "surprise_bag_data",
			Err:   errors.New("price and estimated_value are required"),
		}
	}

	sb := &models.SurpriseBagInsert{
		Price:          *decoded.Price,
		EstimatedValue: *decoded.EstimatedValue,
		DailyQuantity:  decoded.DailyQuantity,
		TotalQuantity:  decoded.TotalQuantity,
	}
	if decoded.DailyQuantity != nil {
		current := *decoded.DailyQuantity
		sb.CurrentDailyQuantity = &current
	}
	return sb, nil
}

// parseSheetBool follows the sheet convention: "true", "1" and "yes"
// (any case) are true, everything else is false.
func parseSheetBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true
	}
	return false
}
