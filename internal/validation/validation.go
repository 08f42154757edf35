package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"restaurant-offers/internal/models"
)

var timeOfDayRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

const dateLayout = "2006-01-02"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidateSubmission checks an operator's offer submission before it is
// written to the pending sheet. Offer-type existence is checked against
// the lookup table by the service, not here.
func ValidateSubmission(req models.SubmitOfferRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}

	if strings.TrimSpace(req.OfferType) == "" {
		return &ValidationError{Field: "offer_type", Message: "is required"}
	}

	if err := validateDate("start_date", req.StartDate, true); err != nil {
		return err
	}
	if err := validateDate("end_date", req.EndDate, false); err != nil {
		return err
	}

	if err := validateTimeOfDay("valid_start_time", req.ValidStartTime); err != nil {
		return err
	}
	if err := validateTimeOfDay("valid_end_time", req.ValidEndTime); err != nil {
		return err
	}

	if err := validateValidDays(req.ValidDaysOfWeek); err != nil {
		return err
	}

	if req.OfferType == "Surprise Bag" && req.SurpriseBag == nil {
		return &ValidationError{Field: "surprise_bag", Message: "is required for Surprise Bag offers"}
	}
	if req.SurpriseBag != nil {
		if err := validateSurpriseBag(req.SurpriseBag); err != nil {
			return err
		}
	}

	return nil
}

func validateDate(field, value string, required bool) error {
	if value == "" {
		if required {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return &ValidationError{Field: field, Message: "must be a YYYY-MM-DD date"}
	}
	return nil
}

func validateTimeOfDay(field, value string) error {
	if value == "" {
		return nil
	}
	if !timeOfDayRegex.MatchString(value) {
		return &ValidationError{Field: field, Message: "must be a HH:MM time of day"}
	}
	return nil
}

func validateValidDays(days []int) error {
	if len(days) > 7 {
		return &ValidationError{Field: "valid_days_of_week", Message: "cannot contain more than 7 days"}
	}

	seen := make(map[int]bool)
	for _, d := range days {
		if d < 0 || d > 6 {
			return &ValidationError{
				Field:   "valid_days_of_week",
				Message: fmt.Sprintf("weekday %d out of range 0-6", d),
			}
		}
		if seen[d] {
			return &ValidationError{
				Field:   "valid_days_of_week",
				Message: fmt.Sprintf("duplicate weekday: %d", d),
			}
		}
		seen[d] = true
	}
	return nil
}

func validateSurpriseBag(sb *models.SurpriseBagInsert) error {
	if sb.Price <= 0 {
		return &ValidationError{Field: "surprise_bag.price", Message: "must be positive"}
	}
	if sb.EstimatedValue <= 0 {
		return &ValidationError{Field: "surprise_bag.estimated_value", Message: "must be positive"}
	}

	// A bag either recurs daily or is a one-time limited batch, never both.
	if sb.DailyQuantity == nil && sb.TotalQuantity == nil {
		return &ValidationError{
			Field:   "surprise_bag",
			Message: "one of daily_quantity or total_quantity is required",
		}
	}
	if sb.DailyQuantity != nil && sb.TotalQuantity != nil {
		return &ValidationError{
			Field:   "surprise_bag",
			Message: "daily_quantity and total_quantity are mutually exclusive",
		}
	}
	if sb.DailyQuantity != nil && *sb.DailyQuantity < 1 {
		return &ValidationError{Field: "surprise_bag.daily_quantity", Message: "must be at least 1"}
	}
	if sb.TotalQuantity != nil && *sb.TotalQuantity < 1 {
		return &ValidationError{Field: "surprise_bag.total_quantity", Message: "must be at least 1"}
	}
	return nil
}

func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}
