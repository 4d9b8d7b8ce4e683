/*
errors.go - Centralized error types for the wizard engine

PURPOSE:
  All engine errors in one place for consistency and discoverability.
  Every validation failure is local, recoverable and user-correctable;
  the only failure that crosses the engine boundary is ErrSubmitFailed.

ERROR CATEGORIES:
  1. Step-gate errors  - block a forward wizard transition
  2. Editor errors     - block a mode-detail commit
  3. Submission errors - block payload assembly or report a failed submit

USAGE:
  Callers branch with errors.Is():

    if errors.Is(err, itinerary.ErrMissingField) {
        var mf *itinerary.MissingFieldError
        errors.As(err, &mf) // mf.Field names the offending field
    }

SEE ALSO:
  - editor.go: returns MissingFieldError / DateOrderError / NoticeError
  - wizard.go: returns step-gate sentinels
  - assembler.go: returns submission-time sentinels
*/
package itinerary

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingSelection is returned by the step-2 gate when travel type
	// or trip type has not been chosen.
	ErrMissingSelection = errors.New("travel type and trip type must be selected")

	// ErrNoTransportMode is returned by the step-3 gate when only
	// accommodation (or nothing) is selected.
	ErrNoTransportMode = errors.New("at least one transport mode (flight, train or bus) is required")

	// ErrIncompleteModeDetails is returned when a selected mode has no
	// committed detail, at the step-3 gate or at submission.
	ErrIncompleteModeDetails = errors.New("a selected mode has no details")

	// ErrMissingField is returned by editor validation when a required
	// field is absent or empty.
	ErrMissingField = errors.New("required field missing")

	// ErrInvalidDateOrder is returned when a return/check-out date is not
	// strictly after the departure/check-in date.
	ErrInvalidDateOrder = errors.New("return date must be after departure date")

	// ErrInsufficientNotice is returned when a travel date falls inside
	// the minimum advance-notice window for the draft's travel type.
	ErrInsufficientNotice = errors.New("travel date is within the advance-notice window")

	// ErrMissingPurpose and ErrNoModeSelected are submission-time gates.
	// They are unreachable when the step gates were enforced, but are
	// re-checked defensively by the assembler.
	ErrMissingPurpose = errors.New("purpose of travel is required")
	ErrNoModeSelected = errors.New("no travel mode selected")

	// ErrSubmitFailed wraps a failure of the external submission call.
	// The draft is preserved unchanged so the user may retry.
	ErrSubmitFailed = errors.New("itinerary submission failed")

	// ErrNoOpenEditor is returned when Edit/Commit is called without an
	// open scratch buffer. Reaching it indicates a caller bug.
	ErrNoOpenEditor = errors.New("no mode is being edited")

	// ErrUnknownMode is returned for a mode kind outside the known set.
	ErrUnknownMode = errors.New("unknown travel mode")
)

// =============================================================================
// STRUCTURED ERRORS - Carry field-level context
// =============================================================================

// MissingFieldError identifies the first required field found empty.
type MissingFieldError struct {
	Mode  ModeKind
	Field Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: required field %q is empty", e.Mode, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// DateOrderError reports a violated strict date ordering.
type DateOrderError struct {
	Mode      ModeKind
	Start     Field
	End       Field
	StartDate Date
	EndDate   Date
}

func (e *DateOrderError) Error() string {
	return fmt.Sprintf("%s: %s (%s) must be strictly after %s (%s)",
		e.Mode, e.End, e.EndDate, e.Start, e.StartDate)
}

func (e *DateOrderError) Unwrap() error { return ErrInvalidDateOrder }

// NoticeError reports a travel date inside the advance-notice window.
type NoticeError struct {
	Mode     ModeKind
	Field    Field
	Date     Date
	Earliest Date
}

func (e *NoticeError) Error() string {
	return fmt.Sprintf("%s: %s %s is before the earliest selectable date %s",
		e.Mode, e.Field, e.Date, e.Earliest)
}

func (e *NoticeError) Unwrap() error { return ErrInsufficientNotice }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidationError reports whether err is a user-correctable validation
// failure (anything but a failed submit).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingSelection) ||
		errors.Is(err, ErrNoTransportMode) ||
		errors.Is(err, ErrIncompleteModeDetails) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidDateOrder) ||
		errors.Is(err, ErrInsufficientNotice) ||
		errors.Is(err, ErrMissingPurpose) ||
		errors.Is(err, ErrNoModeSelected)
}
