package itinerary

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func flightForm(travel, ret string) Form {
	f := Form{
		FieldFromAirport: "Mumbai (BOM)",
		FieldToAirport:   "Delhi (DEL)",
		FieldTravelDate:  travel,
	}
	if ret != "" {
		f[FieldReturnDate] = ret
	}
	return f
}

func stayForm(checkIn, checkOut string) Form {
	return Form{
		FieldCity:     "Mumbai",
		FieldCheckIn:  checkIn,
		FieldCheckOut: checkOut,
	}
}

// noNotice disables the advance-notice check so date-order cases stand alone.
var noNotice = Date{}

// =============================================================================
// VALIDATION - Fail-fast ordering
// =============================================================================

func TestValidateForm_MissingRequiredField(t *testing.T) {
	// GIVEN: a flight form with no destination
	form := flightForm("2025-06-10", "")
	delete(form, FieldToAirport)

	// WHEN/THEN: the first missing field is reported
	_, err := ValidateForm(form, ModeFlight, TripOneWay, noNotice)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}

	var mf *MissingFieldError
	if !errors.As(err, &mf) {
		t.Fatal("expected a MissingFieldError")
	}
	if mf.Field != FieldToAirport {
		t.Errorf("expected to_airport named, got %s", mf.Field)
	}
}

func TestValidateForm_RoundTripRequiresReturnDate(t *testing.T) {
	form := flightForm("2025-06-10", "")

	_, err := ValidateForm(form, ModeFlight, TripRoundTrip, noNotice)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for absent return date, got %v", err)
	}
}

func TestValidateForm_ReturnMustBeStrictlyAfterDeparture(t *testing.T) {
	// Scenario: travel 2025-06-01, return same day -> rejected; +2 days -> ok.
	_, err := ValidateForm(flightForm("2025-06-01", "2025-06-01"), ModeFlight, TripRoundTrip, noNotice)
	if !errors.Is(err, ErrInvalidDateOrder) {
		t.Fatalf("equal dates: expected ErrInvalidDateOrder, got %v", err)
	}

	_, err = ValidateForm(flightForm("2025-06-01", "2025-05-30"), ModeFlight, TripRoundTrip, noNotice)
	if !errors.Is(err, ErrInvalidDateOrder) {
		t.Fatalf("earlier return: expected ErrInvalidDateOrder, got %v", err)
	}

	detail, err := ValidateForm(flightForm("2025-06-01", "2025-06-03"), ModeFlight, TripRoundTrip, noNotice)
	if err != nil {
		t.Fatalf("valid round trip rejected: %v", err)
	}
	tr := detail.(*TransportDetail)
	if !tr.ReturnDate.Equal(NewDate(2025, time.June, 3)) {
		t.Errorf("return date not carried into detail: %s", tr.ReturnDate)
	}
}

func TestValidateForm_OneWayIgnoresSuppliedReturnDate(t *testing.T) {
	// A return date on a one-way trip is accepted but ignored, not an error.
	detail, err := ValidateForm(flightForm("2025-06-10", "2025-06-01"), ModeFlight, TripOneWay, noNotice)
	if err != nil {
		t.Fatalf("one-way with stale return date rejected: %v", err)
	}
	if !detail.(*TransportDetail).ReturnDate.IsZero() {
		t.Error("one-way detail should not keep a return date")
	}
}

func TestValidateForm_AccommodationCheckOutOrdering(t *testing.T) {
	_, err := ValidateForm(stayForm("2025-06-10", "2025-06-10"), ModeAccommodation, TripRoundTrip, noNotice)
	if !errors.Is(err, ErrInvalidDateOrder) {
		t.Fatalf("expected ErrInvalidDateOrder, got %v", err)
	}

	detail, err := ValidateForm(stayForm("2025-06-10", "2025-06-12"), ModeAccommodation, TripRoundTrip, noNotice)
	if err != nil {
		t.Fatalf("valid stay rejected: %v", err)
	}
	if detail.Kind() != ModeAccommodation {
		t.Errorf("unexpected kind %s", detail.Kind())
	}
}

func TestValidateForm_AdvanceNoticeWindow(t *testing.T) {
	// GIVEN: domestic inter-state, 5 days notice from 2025-06-01
	today := NewDate(2025, time.June, 1)
	earliest := EarliestTravelDate(today, TravelDomestic, SubTypeInterState)

	// THEN: today+4 is unselectable, today+5 accepted
	_, err := ValidateForm(flightForm("2025-06-05", ""), ModeFlight, TripOneWay, earliest)
	if !errors.Is(err, ErrInsufficientNotice) {
		t.Fatalf("today+4: expected ErrInsufficientNotice, got %v", err)
	}

	if _, err := ValidateForm(flightForm("2025-06-06", ""), ModeFlight, TripOneWay, earliest); err != nil {
		t.Fatalf("today+5 rejected: %v", err)
	}
}

func TestValidateForm_MalformedDate(t *testing.T) {
	if _, err := ValidateForm(flightForm("June 10", ""), ModeFlight, TripOneWay, noNotice); err == nil {
		t.Fatal("malformed date accepted")
	}
}

// =============================================================================
// EDITOR LIFECYCLE
// =============================================================================

func TestEditor_CancelLeavesDraftUntouched(t *testing.T) {
	d := NewDraft()
	d.SelectedModes = []ModeKind{ModeFlight}

	var e Editor
	if err := e.Open(ModeFlight, d); err != nil {
		t.Fatal(err)
	}
	e.Set(FieldFromAirport, "Mumbai (BOM)")
	e.Cancel()

	if d.Details[ModeFlight] != nil {
		t.Error("cancel must not commit anything")
	}
	if _, open := e.Editing(); open {
		t.Error("editor should be closed after cancel")
	}
	if err := e.Set(FieldFromAirport, "x"); !errors.Is(err, ErrNoOpenEditor) {
		t.Errorf("expected ErrNoOpenEditor after cancel, got %v", err)
	}
}

func TestEditor_SwitchWithoutSavingDiscardsBuffer(t *testing.T) {
	// GIVEN: an in-flight flight edit
	d := NewDraft()
	d.SelectedModes = []ModeKind{ModeFlight, ModeTrain}

	var e Editor
	e.Open(ModeFlight, d)
	e.Set(FieldFromAirport, "Mumbai (BOM)")

	// WHEN: another mode is opened without committing
	e.Open(ModeTrain, d)

	// THEN: the flight buffer is gone and nothing was committed
	if d.Details[ModeFlight] != nil {
		t.Error("switching modes must not commit the previous buffer")
	}
	if mode, _ := e.Editing(); mode != ModeTrain {
		t.Errorf("expected train open, got %s", mode)
	}
	if e.Form()[FieldFromAirport] != "" {
		t.Error("new buffer should not carry fields from the discarded one")
	}
}

func TestEditor_ReopenSeedsFromCommittedDetail(t *testing.T) {
	d := NewDraft()
	d.TripType = TripOneWay
	d.SelectedModes = []ModeKind{ModeTrain}

	var e Editor
	e.Open(ModeTrain, d)
	e.Set(FieldFromStation, "Mumbai Central")
	e.Set(FieldToStation, "Delhi Junction")
	e.Set(FieldTravelDate, "2025-06-10")
	e.Set(FieldClassPref, "2AC")
	if err := e.Commit(d, noNotice); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Re-opening starts from the saved values.
	e.Open(ModeTrain, d)
	form := e.Form()
	if form[FieldFromStation] != "Mumbai Central" || form[FieldClassPref] != "2AC" {
		t.Errorf("reopened buffer not seeded from committed detail: %v", form)
	}
}

func TestEditor_FailedCommitKeepsBufferOpen(t *testing.T) {
	d := NewDraft()
	d.TripType = TripRoundTrip
	d.SelectedModes = []ModeKind{ModeBus}

	var e Editor
	e.Open(ModeBus, d)
	e.Set(FieldFromCity, "Pune")
	e.Set(FieldToCity, "Mumbai")
	e.Set(FieldTravelDate, "2025-06-10")
	e.Set(FieldReturnDate, "2025-06-10")

	if err := e.Commit(d, noNotice); !errors.Is(err, ErrInvalidDateOrder) {
		t.Fatalf("expected ErrInvalidDateOrder, got %v", err)
	}
	if d.Details[ModeBus] != nil {
		t.Error("failed commit must not write into the draft")
	}
	if _, open := e.Editing(); !open {
		t.Error("buffer should stay open so the user can fix the field")
	}

	// Fix and retry.
	e.Set(FieldReturnDate, "2025-06-12")
	if err := e.Commit(d, noNotice); err != nil {
		t.Fatalf("fixed commit failed: %v", err)
	}
	if d.Details[ModeBus] == nil {
		t.Fatal("commit did not write the detail")
	}
	if _, open := e.Editing(); open {
		t.Error("editor should close after a successful commit")
	}
}
