// ABOUTME: Fetch failure type shared by every way a scrape can go wrong
// ABOUTME: Reason distinguishes network, parse, and blocked failures for logging only
package fetcher

import (
	"errors"
	"fmt"
)

// Reason classifies a fetch failure
type Reason string

const (
	ReasonNetwork Reason = "network"
	ReasonParse   Reason = "parse"
	ReasonBlocked Reason = "blocked"
)

// FetchError is the single error kind returned by Fetch
type FetchError struct {
	URL        string
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchFailure reports whether err is a FetchError
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// ReasonOf returns the failure reason, or empty when err is not a FetchError
func ReasonOf(err error) Reason {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ""
}
