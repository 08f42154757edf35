package models

// AboutText is the per-language block of the offer's about field.
type AboutText struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
}

// About is structured multilingual text stored on an offer. Only "en" is
// populated by this system.
type About struct {
	En AboutText `json:"en"`
}

// PendingOfferRow is one raw record from the spreadsheet store, in sheet
// column order. All values are the literal cell strings; JSON sub-fields
// are parsed later by the normalizer. Index is the zero-based position of
// the row among the data rows (header excluded) at read time; it is the
// only row identity besides (restaurant_id, title, offer_type).
type PendingOfferRow struct {
	Index              int
	Timestamp          string
	RestaurantID       string
	RestaurantName     string
	OfferType          string
	Title              string
	Description        string
	Summary            string
	ValidDaysOfWeek    string
	ValidStartTime     string
	ValidEndTime       string
	StartDate          string
	EndDate            string
	UniqueUsagePerUser string
	SurpriseBagData    string
	Status             string
}

// OfferInsert is a validated, normalized payload ready for insertion.
type OfferInsert struct {
	RestaurantID       string
	About              About
	OfferTypeID        int64
	OfferTypeName      string
	ValidDaysOfWeek    []int // nil means all days
	ValidStartTime     *string
	ValidEndTime       *string
	StartDate          string
	EndDate            *string
	UniqueUsagePerUser bool
	SurpriseBag        *SurpriseBagInsert
}

// SurpriseBagInsert is the optional 1:1 extension payload for a
// Surprise Bag offer. CurrentDailyQuantity is copied from DailyQuantity
// at creation time and is an independent counter afterwards.
type SurpriseBagInsert struct {
	Price                float64 `json:"price"`
	EstimatedValue       float64 `json:"estimated_value"`
	DailyQuantity        *int    `json:"daily_quantity,omitempty"`
	CurrentDailyQuantity *int    `json:"-"`
	TotalQuantity        *int    `json:"total_quantity,omitempty"`
}

// OfferType is one row of the static lookup table mapping display names
// to ids.
type OfferType struct {
	ID int64  `json:"id"`
	En string `json:"en"`
	Fr string `json:"fr,omitempty"`
}

// Offer is an approved offer as read back from the relational store,
// including the offer-type display name, redemption count and, when
// present, the surprise-bag extension.
type Offer struct {
	ID                   string   `json:"id"`
	RestaurantID         string   `json:"restaurant_id"`
	About                About    `json:"about"`
	OfferTypeID          int64    `json:"offer_type"`
	OfferTypeName        string   `json:"offer_type_name"`
	ValidDaysOfWeek      []int    `json:"valid_days_of_week,omitempty"`
	ValidStartTime       *string  `json:"valid_start_time,omitempty"`
	ValidEndTime         *string  `json:"valid_end_time,omitempty"`
	StartDate            string   `json:"start_date"`
	EndDate              *string  `json:"end_date,omitempty"`
	UniqueUsagePerUser   bool     `json:"unique_usage_per_user"`
	CreatedAt            string   `json:"created_at"`
	RedemptionCount      int      `json:"redemption_count"`
	Price                *float64 `json:"price,omitempty"`
	EstimatedValue       *float64 `json:"estimated_value,omitempty"`
	DailyQuantity        *int     `json:"daily_quantity,omitempty"`
	CurrentDailyQuantity *int     `json:"current_daily_quantity,omitempty"`
	TotalQuantity        *int     `json:"total_quantity,omitempty"`
}

// PendingOffer is the normalized read-only projection of a pending sheet
// row served to restaurant operators.
type PendingOffer struct {
	Timestamp          string             `json:"timestamp"`
	OfferType          string             `json:"offer_type"`
	About              About              `json:"about"`
	ValidDaysOfWeek    []int              `json:"valid_days_of_week,omitempty"`
	ValidStartTime     *string            `json:"valid_start_time,omitempty"`
	ValidEndTime       *string            `json:"valid_end_time,omitempty"`
	StartDate          *string            `json:"start_date,omitempty"`
	EndDate            *string            `json:"end_date,omitempty"`
	UniqueUsagePerUser bool               `json:"unique_usage_per_user"`
	SurpriseBag        *SurpriseBagInsert `json:"surprise_bag,omitempty"`
	Status             string             `json:"status"`
}

// SubmitOfferRequest is the request body for submitting a new offer into
// the pending queue.
type SubmitOfferRequest struct {
	RestaurantName     string             `json:"restaurant_name"`
	OfferType          string             `json:"offer_type"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Summary            string             `json:"summary"`
	ValidDaysOfWeek    []int              `json:"valid_days_of_week,omitempty"`
	ValidStartTime     string             `json:"valid_start_time,omitempty"`
	ValidEndTime       string             `json:"valid_end_time,omitempty"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date,omitempty"`
	UniqueUsagePerUser bool               `json:"unique_usage_per_user"`
	SurpriseBag        *SurpriseBagInsert `json:"surprise_bag,omitempty"`
}

// SyncResponse reports how many pending rows reconciliation removed.
type SyncResponse struct {
	Deleted int `json:"deleted"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
