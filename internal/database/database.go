package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"restaurant-offers/internal/models"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

// DefaultOfferTypes is the static lookup table seeded into a fresh
// store. Display names are the exact strings operators submit.
var DefaultOfferTypes = []models.OfferType{
	{En: "Buy One Get One", Fr: "Un Acheté Un Offert"},
	{En: "Percent Discount", Fr: "Rabais en Pourcentage"},
	{En: "Special", Fr: "Spécial"},
	{En: "Surprise Bag", Fr: "Sac Surprise"},
}

// DB wraps the database connection and provides methods for data access.
// Queries are written with ? placeholders and rebound for Postgres.
type DB struct {
	conn   *sql.DB
	driver string
}

// Open connects to the relational store and initializes the schema.
// A non-empty url selects PostgreSQL; otherwise a local SQLite file at
// path is used.
func Open(url, path string) (*DB, error) {
	var (
		conn *sql.DB
		err  error
		drv  string
	)
	if url != "" {
		drv = driverPostgres
		conn, err = sql.Open(drv, url)
	} else {
		drv = driverSQLite
		conn, err = sql.Open(drv, path+"?_foreign_keys=1")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, driver: drv}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// BeginTx starts a transaction. The caller owns commit and rollback; one
// approval run spans exactly one transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// initSchema creates the necessary tables if they don't exist and seeds
// the offer-type lookup table.
func (db *DB) initSchema() error {
	var queries []string
	if db.driver == driverPostgres {
		queries = []string{
			`CREATE TABLE IF NOT EXISTS offer_types (
				id BIGSERIAL PRIMARY KEY,
				en TEXT NOT NULL UNIQUE,
				fr TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS offers (
				id TEXT PRIMARY KEY,
				restaurant_id TEXT NOT NULL,
				about TEXT NOT NULL,
				offer_type BIGINT NOT NULL REFERENCES offer_types(id),
				valid_days_of_week TEXT,
				valid_start_time TEXT,
				valid_end_time TEXT,
				start_date TEXT NOT NULL,
				end_date TEXT,
				unique_usage_per_user BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS surprise_bags (
				offer_id TEXT PRIMARY KEY REFERENCES offers(id) ON DELETE CASCADE,
				price DOUBLE PRECISION NOT NULL,
				estimated_value DOUBLE PRECISION NOT NULL,
				daily_quantity BIGINT,
				current_daily_quantity BIGINT,
				total_quantity BIGINT
			)`,
			`CREATE TABLE IF NOT EXISTS offer_redemptions (
				id TEXT PRIMARY KEY,
				offer_id TEXT NOT NULL REFERENCES offers(id) ON DELETE CASCADE,
				profile_id TEXT NOT NULL,
				redeemed_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_offers_restaurant ON offers(restaurant_id)`,
			`CREATE INDEX IF NOT EXISTS idx_redemptions_offer ON offer_redemptions(offer_id)`,
		}
	} else {
		queries = []string{
			`CREATE TABLE IF NOT EXISTS offer_types (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				en TEXT NOT NULL UNIQUE,
				fr TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS offers (
				id TEXT PRIMARY KEY,
				restaurant_id TEXT NOT NULL,
				about TEXT NOT NULL,
				offer_type INTEGER NOT NULL REFERENCES offer_types(id),
				valid_days_of_week TEXT,
				valid_start_time TEXT,
				valid_end_time TEXT,
				start_date TEXT NOT NULL,
				end_date TEXT,
				unique_usage_per_user INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS surprise_bags (
				offer_id TEXT PRIMARY KEY REFERENCES offers(id) ON DELETE CASCADE,
				price REAL NOT NULL,
				estimated_value REAL NOT NULL,
				daily_quantity INTEGER,
				current_daily_quantity INTEGER,
				total_quantity INTEGER
			)`,
			`CREATE TABLE IF NOT EXISTS offer_redemptions (
				id TEXT PRIMARY KEY,
				offer_id TEXT NOT NULL REFERENCES offers(id) ON DELETE CASCADE,
				profile_id TEXT NOT NULL,
				redeemed_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_offers_restaurant ON offers(restaurant_id)`,
			`CREATE INDEX IF NOT EXISTS idx_redemptions_offer ON offer_redemptions(offer_id)`,
		}
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}

	return db.seedOfferTypes()
}

// seedOfferTypes inserts the default lookup rows, leaving existing rows
// untouched.
func (db *DB) seedOfferTypes() error {
	query := db.rebind(`INSERT INTO offer_types (en, fr) VALUES (?, ?) ON CONFLICT (en) DO NOTHING`)
	for _, ot := range DefaultOfferTypes {
		if _, err := db.conn.Exec(query, ot.En, ot.Fr); err != nil {
			return fmt.Errorf("failed to seed offer type %q: %w", ot.En, err)
		}
	}
	return nil
}

// OfferTypeID resolves an offer-type display name to its id with an
// exact-match lookup. The second return value reports whether a row
// matched.
func (db *DB) OfferTypeID(ctx context.Context, name string) (int64, bool, error) {
	query := db.rebind(`SELECT id FROM offer_types WHERE en = ?`)

	var id int64
	err := db.conn.QueryRowContext(ctx, query, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up offer type: %w", err)
	}
	return id, true, nil
}

// OfferTypes returns the full lookup table ordered by id.
func (db *DB) OfferTypes(ctx context.Context) ([]models.OfferType, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, en, COALESCE(fr, '') FROM offer_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query offer types: %w", err)
	}
	defer rows.Close()

	var types []models.OfferType
	for rows.Next() {
		var ot models.OfferType
		if err := rows.Scan(&ot.ID, &ot.En, &ot.Fr); err != nil {
			return nil, fmt.Errorf("failed to scan offer type: %w", err)
		}
		types = append(types, ot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer types: %w", err)
	}
	return types, nil
}

// InsertOffer inserts one offer row inside the caller's transaction and
// returns the generated offer id.
func (db *DB) InsertOffer(ctx context.Context, tx *sql.Tx, p *models.OfferInsert) (string, error) {
	aboutJSON, err := json.Marshal(p.About)
	if err != nil {
		return "", fmt.Errorf("failed to encode about data: %w", err)
	}

	var daysJSON *string
	if p.ValidDaysOfWeek != nil {
		data, err := json.Marshal(p.ValidDaysOfWeek)
		if err != nil {
			return "", fmt.Errorf("failed to encode valid days: %w", err)
		}
		s := string(data)
		daysJSON = &s
	}

	id := uuid.New().String()
	query := db.rebind(`INSERT INTO offers (
		id, restaurant_id, about, offer_type, valid_days_of_week,
		valid_start_time, valid_end_time, start_date, end_date,
		unique_usage_per_user, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = tx.ExecContext(ctx, query,
		id,
		p.RestaurantID,
		string(aboutJSON),
		p.OfferTypeID,
		daysJSON,
		p.ValidStartTime,
		p.ValidEndTime,
		p.StartDate,
		p.EndDate,
		p.UniqueUsagePerUser,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert offer: %w", err)
	}
	return id, nil
}

// InsertSurpriseBag inserts the surprise-bag extension row for an offer
// inside the caller's transaction.
func (db *DB) InsertSurpriseBag(ctx context.Context, tx *sql.Tx, offerID string, sb *models.SurpriseBagInsert) error {
	query := db.rebind(`INSERT INTO surprise_bags (
		offer_id, price, estimated_value, daily_quantity,
		current_daily_quantity, total_quantity
	) VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := tx.ExecContext(ctx, query,
		offerID,
		sb.Price,
		sb.EstimatedValue,
		sb.DailyQuantity,
		sb.CurrentDailyQuantity,
		sb.TotalQuantity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert surprise bag: %w", err)
	}
	return nil
}

// OfferExists reports whether an offer with the given natural key
// (restaurant, English title, offer-type display name) already exists.
// The comparison is exact and case-sensitive.
func (db *DB) OfferExists(ctx context.Context, restaurantID, title, typeName string) (bool, error) {
	var query string
	if db.driver == driverPostgres {
		query = db.rebind(`SELECT COUNT(*) FROM offers o
			JOIN offer_types ot ON o.offer_type = ot.id
			WHERE o.restaurant_id = ?
			AND o.about::json->'en'->>'title' = ?
			AND ot.en = ?`)
	} else {
		query = `SELECT COUNT(*) FROM offers o
			JOIN offer_types ot ON o.offer_type = ot.id
			WHERE o.restaurant_id = ?
			AND json_extract(o.about, '$.en.title') = ?
			AND ot.en = ?`
	}

	var count int
	if err := db.conn.QueryRowContext(ctx, query, restaurantID, title, typeName).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check offer existence: %w", err)
	}
	return count > 0, nil
}

// ActiveOffers returns all approved offers for a restaurant with their
// offer-type display name, redemption count and surprise-bag details,
// newest first.
func (db *DB) ActiveOffers(ctx context.Context, restaurantID string) ([]models.Offer, error) {
	query := db.rebind(`SELECT
		o.id, o.restaurant_id, o.about, o.offer_type, ot.en,
		o.valid_days_of_week, o.valid_start_time, o.valid_end_time,
		o.start_date, o.end_date, o.unique_usage_per_user, o.created_at,
		(SELECT COUNT(*) FROM offer_redemptions r WHERE r.offer_id = o.id),
		sb.price, sb.estimated_value, sb.daily_quantity,
		sb.current_daily_quantity, sb.total_quantity
	FROM offers o
	JOIN offer_types ot ON o.offer_type = ot.id
	LEFT JOIN surprise_bags sb ON o.id = sb.offer_id
	WHERE o.restaurant_id = ?
	ORDER BY o.created_at DESC`)

	rows, err := db.conn.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var (
			o                  models.Offer
			aboutJSON          string
			daysJSON           sql.NullString
			startTime, endTime sql.NullString
			endDate            sql.NullString
			price, estValue    sql.NullFloat64
			daily, current     sql.NullInt64
			total              sql.NullInt64
		)
		err := rows.Scan(
			&o.ID, &o.RestaurantID, &aboutJSON, &o.OfferTypeID, &o.OfferTypeName,
			&daysJSON, &startTime, &endTime,
			&o.StartDate, &endDate, &o.UniqueUsagePerUser, &o.CreatedAt,
			&o.RedemptionCount,
			&price, &estValue, &daily, &current, &total,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}

		if err := json.Unmarshal([]byte(aboutJSON), &o.About); err != nil {
			return nil, fmt.Errorf("failed to decode about data for offer %s: %w", o.ID, err)
		}
		if daysJSON.Valid {
			if err := json.Unmarshal([]byte(daysJSON.String), &o.ValidDaysOfWeek); err != nil {
				return nil, fmt.Errorf("failed to decode valid days for offer %s: %w", o.ID, err)
			}
		}
		o.ValidStartTime = nullableString(startTime)
		o.ValidEndTime = nullableString(endTime)
		o.EndDate = nullableString(endDate)
		o.Price = nullableFloat(price)
		o.EstimatedValue = nullableFloat(estValue)
		o.DailyQuantity = nullableInt(daily)
		o.CurrentDailyQuantity = nullableInt(current)
		o.TotalQuantity = nullableInt(total)

		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}
	return offers, nil
}

// InsertRedemption records one redemption of an offer. Redemption logic
// itself lives downstream; this exists so counts can be populated.
func (db *DB) InsertRedemption(ctx context.Context, offerID, profileID string) error {
	query := db.rebind(`INSERT INTO offer_redemptions (id, offer_id, profile_id, redeemed_at)
		VALUES (?, ?, ?, ?)`)
	_, err := db.conn.ExecContext(ctx, query,
		uuid.New().String(), offerID, profileID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert redemption: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $N for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullableString(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
