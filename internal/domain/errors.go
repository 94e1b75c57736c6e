package domain

import (
	"github.com/go-faster/errors"
)

// Catalog load failures.
var (
	ErrInvalidURL = errors.New("invalid url")
	ErrNoData     = errors.New("no data received")
	ErrDecoding   = errors.New("failed to decode data")
	ErrNetwork    = errors.New("network error")

	// ErrNoMoreData signals the end of the remote catalog. It stops
	// pagination and is not a load failure.
	ErrNoMoreData = errors.New("no more data")

	// ErrStalePage settles fetches that were overtaken by a catalog reset.
	// Their page must not be applied anywhere.
	ErrStalePage = errors.New("page fetched before catalog reset")
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrFetchInProgress  = errors.New("fetch already in progress")
	ErrNoThumbnail      = errors.New("cart item has no thumbnail")
	ErrInvalidPriceSpan = errors.New("min price must not exceed max price")
)

// NetworkError carries the transport failure behind ErrNetwork.
type NetworkError struct {
	Cause error
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(cause error) *NetworkError {
	return &NetworkError{Cause: cause}
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return ErrNetwork.Error()
	}
	return ErrNetwork.Error() + ": " + e.Cause.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrNetwork) hold for every NetworkError.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// IsEndOfCatalog reports whether err is the pagination stop signal.
func IsEndOfCatalog(err error) bool {
	return errors.Is(err, ErrNoMoreData)
}

// IsStalePage reports whether err marks a page overtaken by a reset.
func IsStalePage(err error) bool {
	return errors.Is(err, ErrStalePage)
}

// IsLoadFailure reports whether err should surface as a "load failed" state.
func IsLoadFailure(err error) bool {
	return err != nil && !IsEndOfCatalog(err) && !IsStalePage(err)
}

// CatalogError maps err into the catalog error taxonomy. Errors that are
// not already part of it are reported as network errors.
func CatalogError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrInvalidURL, ErrNoData, ErrDecoding, ErrNetwork, ErrNoMoreData} {
		if errors.Is(err, known) {
			return err
		}
	}
	return NewNetworkError(err)
}
