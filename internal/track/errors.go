package track

import "errors"

// Sentinel error kinds. Configuration setters validate eagerly and wrap
// these; derived-product accessors assume validated input and do not
// re-check.
var (
	// ErrInvalidArgument marks unsupported values: isotach wind speeds
	// outside {34, 50, 64}, unknown advisory codes, malformed storm
	// identifiers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound marks storm identifiers that cannot be resolved in
	// the NHC catalog.
	ErrNotFound = errors.New("not found")

	// ErrConnectivity wraps remote fetch failures. Fetches are not
	// retried here.
	ErrConnectivity = errors.New("connectivity")

	// ErrUnimplemented marks deck/advisory combinations that are not
	// modeled.
	ErrUnimplemented = errors.New("unimplemented")
)
