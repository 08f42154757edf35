package offers

import (
	"strings"

	"restaurant-offers/internal/models"
)

// ProjectPending builds the read-only pending projection served to
// restaurant operators from a raw sheet row. It applies the same
// empty-to-null coercions as Normalize but performs no type lookup and
// touches no store.
func ProjectPending(row models.PendingOfferRow) (models.PendingOffer, error) {
	days, err := parseValidDays(row.ValidDaysOfWeek)
	if err != nil {
		return models.PendingOffer{}, err
	}

	startTime, err := parseTimeOfDay("valid_start_time", row.ValidStartTime)
	if err != nil {
		return models.PendingOffer{}, err
	}
	endTime, err := parseTimeOfDay("valid_end_time", row.ValidEndTime)
	if err != nil {
		return models.PendingOffer{}, err
	}

	sb, err := ParseSurpriseBag(row.SurpriseBagData)
	if err != nil {
		return models.PendingOffer{}, err
	}

	return models.PendingOffer{
		Timestamp: row.Timestamp,
		OfferType: row.OfferType,
		About: models.About{
			En: models.AboutText{
				Title:       row.Title,
				Description: row.Description,
				Summary:     row.Summary,
			},
		},
		ValidDaysOfWeek:    days,
		ValidStartTime:     startTime,
		ValidEndTime:       endTime,
		StartDate:          emptyToNil(row.StartDate),
		EndDate:            emptyToNil(row.EndDate),
		UniqueUsagePerUser: parseSheetBool(row.UniqueUsagePerUser),
		SurpriseBag:        sb,
		Status:             row.Status,
	}, nil
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
