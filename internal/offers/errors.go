package offers

import "fmt"

// UnknownOfferTypeError reports a pending row whose offer-type display
// name has no lookup row. It is row-scoped: the batch skips the row and
// continues. Title and RestaurantID identify the row in operator output,
// since sheet rows carry no stable id.
type UnknownOfferTypeError struct {
	Name         string
	Title        string
	RestaurantID string
}

func (e *UnknownOfferTypeError) Error() string {
	return fmt.Sprintf("offer type %q not found (offer %q, restaurant %s)", e.Name, e.Title, e.RestaurantID)
}

// MalformedFieldError reports a sheet cell that failed to parse.
// Row-scoped.
type MalformedFieldError struct {
	Field string
	Err   error
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("malformed field %q: %v", e.Field, e.Err)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

// TxError reports a failure of the transaction machinery itself
// (savepoint create/rollback/release). Unlike row-scoped errors it must
// abort the whole run: the transaction state is no longer trustworthy.
type TxError struct {
	Err error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("transaction failure: %v", e.Err)
}

func (e *TxError) Unwrap() error {
	return e.Err
}
