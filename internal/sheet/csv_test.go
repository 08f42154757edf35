package sheet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"restaurant-offers/internal/models"
)

func testRow(title string) models.PendingOfferRow {
	return models.PendingOfferRow{
		Timestamp:       "2026-01-15T10:00:00Z",
		RestaurantID:    "rest-1",
		RestaurantName:  "Chez Nous",
		OfferType:       "Percent Discount",
		Title:           title,
		Description:     "Ten percent off",
		ValidDaysOfWeek: "[]",
		StartDate:       "2026-01-01",
		Status:          StatusPending,
	}
}

func TestOpenCSVCreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")

	store, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read sheet file: %v", err)
	}
	firstLine := strings.SplitN(string(data), "\n", 2)[0]
	if firstLine != strings.Join(Headers, ",") {
		t.Errorf("Unexpected header line: %q", firstLine)
	}

	rows, err := store.Records(context.Background())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected empty sheet, got %d rows", len(rows))
	}
}

func TestCSVAppendAndRecords(t *testing.T) {
	store, err := OpenCSV(filepath.Join(t.TempDir(), "pending.csv"))
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}
	ctx := context.Background()

	if err := store.Append(ctx, testRow("First")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, testRow("Second")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	rows, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Title != "First" || rows[1].Title != "Second" {
		t.Errorf("Rows out of order: %q, %q", rows[0].Title, rows[1].Title)
	}
	if rows[0].Index != 0 || rows[1].Index != 1 {
		t.Errorf("Unexpected indices: %d, %d", rows[0].Index, rows[1].Index)
	}
	if rows[0].Status != StatusPending {
		t.Errorf("Unexpected status: %q", rows[0].Status)
	}
}

func TestCSVDeleteRow(t *testing.T) {
	store, err := OpenCSV(filepath.Join(t.TempDir(), "pending.csv"))
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		if err := store.Append(ctx, testRow(title)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := store.DeleteRow(ctx, 1); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}

	rows, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows after delete, got %d", len(rows))
	}
	if rows[0].Title != "A" || rows[1].Title != "C" {
		t.Errorf("Wrong rows survived: %q, %q", rows[0].Title, rows[1].Title)
	}

	if err := store.DeleteRow(ctx, 5); err == nil {
		t.Error("Expected error for out-of-range index")
	}
}

func TestCSVRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")
	if err := os.WriteFile(path, []byte("not,the,right,header\n"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if _, err := OpenCSV(path); err == nil {
		t.Error("Expected OpenCSV to reject a file with a foreign header")
	}
}

func TestCSVPadsShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")
	// A hand-edited row missing trailing columns.
	content := strings.Join(Headers, ",") + "\n" +
		"2026-01-15T10:00:00Z,rest-1,Chez Nous,Special,Half Price\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	store, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}

	rows, err := store.Records(context.Background())
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Title != "Half Price" {
		t.Errorf("Unexpected title: %q", rows[0].Title)
	}
	if rows[0].Status != "" {
		t.Errorf("Expected empty status for padded row, got %q", rows[0].Status)
	}
}

func TestIsPending(t *testing.T) {
	pending := []string{"pending", "Pending", "PENDING", " pending ", "Pending "}
	for _, s := range pending {
		if !IsPending(s) {
			t.Errorf("IsPending(%q) expected true", s)
		}
	}
	notPending := []string{"", "approved", "rejected", "pend"}
	for _, s := range notPending {
		if IsPending(s) {
			t.Errorf("IsPending(%q) expected false", s)
		}
	}
}

func TestMemStoreRecordsDeletionOrder(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C", "D"} {
		if err := store.Append(ctx, testRow(title)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if err := store.DeleteRow(ctx, 3); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}
	if err := store.DeleteRow(ctx, 1); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}

	rows, err := store.Records(ctx)
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "A" || rows[1].Title != "C" {
		t.Errorf("Wrong rows survived: %+v", rows)
	}
	if len(store.Deletions) != 2 || store.Deletions[0] != 3 || store.Deletions[1] != 1 {
		t.Errorf("Unexpected deletion log: %v", store.Deletions)
	}
}
