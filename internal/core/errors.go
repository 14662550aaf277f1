// ABOUTME: Errors returned to callers of the tracker core
// ABOUTME: Not-found errors also match sqlite.ErrNotFound via errors.Is
package core

import (
	"errors"
	"fmt"

	"github.com/harper/pricewatch/internal/models"
	"github.com/harper/pricewatch/internal/storage/sqlite"
)

var (
	// ErrItemNotFound means no item has the requested ID
	ErrItemNotFound = fmt.Errorf("item %w", sqlite.ErrNotFound)
	// ErrAlertNotFound means no alert has the requested ID
	ErrAlertNotFound = fmt.Errorf("alert %w", sqlite.ErrNotFound)
	// ErrInvalidItem means item fields failed validation
	ErrInvalidItem = models.ErrInvalidItem
	// ErrItemInactive means a check was requested for a paused item
	ErrItemInactive = errors.New("item is inactive")
	// ErrInvalidArgument means a parameter is out of range
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSchedulerRunning is returned by Start on a running scheduler
	ErrSchedulerRunning = errors.New("scheduler already running")
)

// notFound converts a storage not-found error into the caller-facing one
func notFound(err error, target error, id string) error {
	if errors.Is(err, sqlite.ErrNotFound) {
		return fmt.Errorf("%w: %s", target, id)
	}
	return err
}
