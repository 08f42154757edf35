package offers

import (
	"context"
	"database/sql"
	"fmt"

	"restaurant-offers/internal/database"
	"restaurant-offers/internal/models"
)

// Writer inserts normalized offers into the relational store inside a
// transaction owned by the caller. Each call is wrapped in a savepoint so
// a failure between the offer insert and the surprise-bag insert rolls
// back the row's partial effect while the batch transaction stays alive:
// sibling rows already written are unaffected.
type Writer struct {
	db *database.DB
}

// NewWriter creates a writer bound to the given store.
func NewWriter(db *database.DB) *Writer {
	return &Writer{db: db}
}

// Insert writes one offer row and, when the payload carries one, its
// surprise-bag extension, returning the new offer id. The offer row goes
// first: its id is the surprise bag's foreign key. Insert never commits
// or rolls back the transaction itself. Savepoint failures come back as
// *TxError and mean the whole run must abort.
func (w *Writer) Insert(ctx context.Context, tx *sql.Tx, p *models.OfferInsert) (string, error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT approval_row"); err != nil {
		return "", &TxError{Err: fmt.Errorf("failed to create savepoint: %w", err)}
	}

	id, err := w.db.InsertOffer(ctx, tx, p)
	if err == nil && p.SurpriseBag != nil {
		err = w.db.InsertSurpriseBag(ctx, tx, id, p.SurpriseBag)
	}

	if err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT approval_row"); rbErr != nil {
			return "", &TxError{Err: fmt.Errorf("failed to roll back savepoint after %v: %w", err, rbErr)}
		}
		if _, relErr := tx.ExecContext(ctx, "RELEASE SAVEPOINT approval_row"); relErr != nil {
			return "", &TxError{Err: fmt.Errorf("failed to release savepoint: %w", relErr)}
		}
		return "", err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT approval_row"); err != nil {
		return "", &TxError{Err: fmt.Errorf("failed to release savepoint: %w", err)}
	}
	return id, nil
}
