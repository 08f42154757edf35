package sheet

import (
	"context"
	"strings"

	"restaurant-offers/internal/models"
)

// Headers is the fixed 15-column schema of the pending-offers sheet, in
// column order. Row 1 of any backing store must match it exactly.
var Headers = []string{
	"timestamp", "restaurant_id", "restaurant_name", "offer_type",
	"title", "description", "summary", "valid_days_of_week",
	"valid_start_time", "valid_end_time", "start_date", "end_date",
	"unique_usage_per_user", "surprise_bag_data", "status",
}

// StatusPending marks a row awaiting admin approval.
const StatusPending = "pending"

// IsPending reports whether a status cell marks a row as awaiting
// approval. Cells are hand-edited at times, so case and surrounding
// whitespace are forgiven; every consumer of the status column must go
// through this one predicate.
func IsPending(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == StatusPending
}

// Store is the narrow spreadsheet interface the pipeline consumes:
// ordered read of all data rows, append, and delete by row index.
// Row indices are zero-based positions among the data rows as returned
// by Records; callers that delete several rows must do so in descending
// index order, since deleting a row shifts every row below it.
type Store interface {
	Records(ctx context.Context) ([]models.PendingOfferRow, error)
	Append(ctx context.Context, row models.PendingOfferRow) error
	DeleteRow(ctx context.Context, index int) error
}

// rowToCells flattens a row into sheet column order.
func rowToCells(row models.PendingOfferRow) []string {
	return []string{
		row.Timestamp,
		row.RestaurantID,
		row.RestaurantName,
		row.OfferType,
		row.Title,
		row.Description,
		row.Summary,
		row.ValidDaysOfWeek,
		row.ValidStartTime,
		row.ValidEndTime,
		row.StartDate,
		row.EndDate,
		row.UniqueUsagePerUser,
		row.SurpriseBagData,
		row.Status,
	}
}

// cellsToRow builds a typed row from sheet cells. Short records are
// padded with empty cells so a trailing blank column never breaks reads.
func cellsToRow(index int, cells []string) models.PendingOfferRow {
	padded := make([]string, len(Headers))
	copy(padded, cells)
	return models.PendingOfferRow{
		Index:              index,
		Timestamp:          padded[0],
		RestaurantID:       padded[1],
		RestaurantName:     padded[2],
		OfferType:          padded[3],
		Title:              padded[4],
		Description:        padded[5],
		Summary:            padded[6],
		ValidDaysOfWeek:    padded[7],
		ValidStartTime:     padded[8],
		ValidEndTime:       padded[9],
		StartDate:          padded[10],
		EndDate:            padded[11],
		UniqueUsagePerUser: padded[12],
		SurpriseBagData:    padded[13],
		Status:             padded[14],
	}
}
