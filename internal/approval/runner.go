package approval

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"restaurant-offers/internal/database"
	"restaurant-offers/internal/events"
	"restaurant-offers/internal/metrics"
	"restaurant-offers/internal/models"
	"restaurant-offers/internal/offers"
	"restaurant-offers/internal/sheet"
)

// ErrCancelled is returned when the operator declines the confirmation
// prompt. Nothing has been read from or written to either store beyond
// the initial sheet read.
var ErrCancelled = errors.New("approval cancelled by operator")

// RowResult is the outcome of one pending row in an approval run.
type RowResult struct {
	Title          string
	RestaurantName string
	RestaurantID   string
	OfferID        string
	Err            error
}

// Report summarizes one approval run.
type Report struct {
	Approved int
	Failed   int
	Results  []RowResult
}

// Runner orchestrates the two operator-facing operations: listing
// pending offers and approving them all in one batch. It is a
// single-operator interactive tool; row-index deletion is only correct
// when no second run is mutating the sheet concurrently.
//
// Events and Metrics are optional; when nil the runner just skips them.
type Runner struct {
	sheet   sheet.Store
	db      *database.DB
	in      *bufio.Reader
	out     io.Writer
	Events  *events.Manager
	Metrics *metrics.Registry
}

// New creates a runner. The reader supplies operator confirmations; the
// writer receives all human-readable output. The caller owns the
// database handle and must close it when the run ends, on every path.
func New(s sheet.Store, db *database.DB, in io.Reader, out io.Writer) *Runner {
	return &Runner{sheet: s, db: db, in: bufio.NewReader(in), out: out}
}

// ListPending prints a human-readable summary of all pending rows. It is
// read-only and changes no state in either store.
func (r *Runner) ListPending(ctx context.Context) error {
	records, err := r.sheet.Records(ctx)
	if err != nil {
		return fmt.Errorf("failed to read pending sheet: %w", err)
	}

	pending := filterPending(records)
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "No pending offers found.")
		return nil
	}

	fmt.Fprintf(r.out, "Found %d pending offers:\n\n", len(pending))
	for i, row := range pending {
		fmt.Fprintf(r.out, "%2d. %-40s | %-20s | %s\n", i+1, truncate(row.Title, 40), truncate(row.RestaurantName, 20), row.OfferType)
		fmt.Fprintf(r.out, "    Description: %s\n", truncate(row.Description, 60))
		fmt.Fprintf(r.out, "    Submitted:   %s\n", truncate(row.Timestamp, 16))
		if sb, err := offers.ParseSurpriseBag(row.SurpriseBagData); err == nil && sb != nil {
			fmt.Fprintf(r.out, "    Surprise Bag: $%.2f (est. value $%.2f)\n", sb.Price, sb.EstimatedValue)
		}
	}
	return nil
}

// ApproveAll normalizes and writes every pending row, commits once, then
// deletes the processed rows from the sheet in descending index order.
//
// Error scoping follows the row/run split: a row that fails to normalize
// or insert is reported, left in the sheet, and the loop continues —
// rows already written stay in the transaction and persist at commit. A
// transaction-machinery failure aborts the run, the deferred rollback
// discards every insert from this run, and the sheet is not touched.
func (r *Runner) ApproveAll(ctx context.Context, skipConfirm bool) (*Report, error) {
	start := time.Now()

	records, err := r.sheet.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending sheet: %w", err)
	}

	pending := filterPending(records)
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "No pending offers to approve.")
		return &Report{}, nil
	}

	fmt.Fprintf(r.out, "Found %d pending offers to approve.\n", len(pending))
	if !skipConfirm {
		fmt.Fprintf(r.out, "Approve all %d offers? (y/N): ", len(pending))
		if !readConfirmation(r.in) {
			fmt.Fprintln(r.out, "Approval cancelled.")
			return nil, ErrCancelled
		}
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	// No-op once Commit succeeds; discards everything when the run
	// aborts before it.
	defer tx.Rollback()

	writer := offers.NewWriter(r.db)
	report := &Report{}
	var toDelete []int

	for _, row := range records {
		if !sheet.IsPending(row.Status) {
			continue
		}
		fmt.Fprintf(r.out, "Processing: %s for %s\n", row.Title, row.RestaurantName)

		payload, err := offers.Normalize(ctx, r.db, row)
		var offerID string
		if err == nil {
			offerID, err = writer.Insert(ctx, tx, payload)
		}
		if err != nil {
			var txErr *offers.TxError
			if errors.As(err, &txErr) {
				return nil, txErr
			}
			report.Failed++
			report.Results = append(report.Results, RowResult{
				Title:          row.Title,
				RestaurantName: row.RestaurantName,
				RestaurantID:   row.RestaurantID,
				Err:            err,
			})
			fmt.Fprintf(r.out, "  failed: %v\n", err)
			continue
		}

		report.Approved++
		report.Results = append(report.Results, RowResult{
			Title:          row.Title,
			RestaurantName: row.RestaurantName,
			RestaurantID:   row.RestaurantID,
			OfferID:        offerID,
		})
		toDelete = append(toDelete, row.Index)
		fmt.Fprintf(r.out, "  created offer %s\n", offerID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approvals: %w", err)
	}

	if r.Metrics != nil {
		r.Metrics.OffersApproved.Add(float64(report.Approved))
		r.Metrics.OffersFailed.Add(float64(report.Failed))
		r.Metrics.ApprovalRunSeconds.Observe(time.Since(start).Seconds())
	}
	if r.Events != nil {
		for _, res := range report.Results {
			if res.Err == nil {
				r.Events.PublishOfferApproved(ctx, res.OfferID, res.RestaurantID, res.Title)
			}
		}
	}

	// Sheet cleanup, highest index first: rows_to_delete was collected
	// top to bottom, and deleting a low row would shift every index
	// below it.
	for i := len(toDelete) - 1; i >= 0; i-- {
		if err := r.sheet.DeleteRow(ctx, toDelete[i]); err != nil {
			fmt.Fprintf(r.out, "%d approved, %d failed\n", report.Approved, report.Failed)
			return report, fmt.Errorf("approvals are committed but sheet cleanup stopped at row %d: %w", toDelete[i], err)
		}
	}

	fmt.Fprintf(r.out, "%d approved, %d failed\n", report.Approved, report.Failed)
	return report, nil
}

func filterPending(records []models.PendingOfferRow) []models.PendingOfferRow {
	var out []models.PendingOfferRow
	for _, row := range records {
		if sheet.IsPending(row.Status) {
			out = append(out, row)
		}
	}
	return out
}

func readConfirmation(in *bufio.Reader) bool {
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// truncate cuts on rune boundaries; titles and restaurant names are
// routinely accented.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
