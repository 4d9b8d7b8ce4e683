package itinerary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedSession builds a session at the review step with a round-trip
// flight and a purpose, ready to submit.
func completedSession(t *testing.T, sub *fakeSubmitter) *Session {
	t.Helper()
	s := NewSession(&fakeProfiles{emp: EmployeeInfo{EmployeeID: "EMP-001"}}, sub)
	s.Now = func() Date { return NewDate(2025, time.May, 1) }

	s.SetTravelType(TravelDomestic)
	s.SetTripType(TripRoundTrip)
	s.SetPurpose("Client workshop")
	require.NoError(t, s.ToggleMode(ModeFlight))
	fillFlight(t, s, "2025-06-10", "2025-06-13")
	require.NoError(t, s.JumpTo(StepModes))
	require.NoError(t, s.Advance())
	require.Equal(t, StepReview, s.Step())
	return s
}

// =============================================================================
// ASSEMBLY
// =============================================================================

func TestAssemble_MissingPurposeThenSuccess(t *testing.T) {
	// Scenario: all steps complete except purpose.
	s := completedSession(t, &fakeSubmitter{id: "itn-1"})
	s.SetPurpose("")

	_, err := Assemble(s.Draft())
	assert.ErrorIs(t, err, ErrMissingPurpose)

	s.SetPurpose("Client workshop")
	p, err := Assemble(s.Draft())
	require.NoError(t, err)
	assert.Equal(t, "Flight", p.Mode)
	assert.Equal(t, "Mumbai (BOM)", p.FromCity)
	assert.Equal(t, "Delhi (DEL)", p.ToCity)
	assert.Equal(t, "2025-06-10", p.StartDate.String())
	assert.Equal(t, "2025-06-13", p.EndDate.String())
	assert.Equal(t, TravelDomestic, p.Type)
}

func TestAssemble_DefensiveGates(t *testing.T) {
	d := NewDraft()
	d.Purpose = "Audit visit"
	_, err := Assemble(d)
	assert.ErrorIs(t, err, ErrNoModeSelected)

	d.SelectedModes = []ModeKind{ModeTrain}
	_, err = Assemble(d)
	assert.ErrorIs(t, err, ErrIncompleteModeDetails)
}

func TestAssemble_OneWayEndDateEqualsStart(t *testing.T) {
	d := NewDraft()
	d.TravelType = TravelDomestic
	d.TripType = TripOneWay
	d.Purpose = "Site inspection"
	d.SelectedModes = []ModeKind{ModeBus}
	d.Details[ModeBus] = &TransportDetail{
		Mode:       ModeBus,
		From:       "Pune",
		To:         "Mumbai",
		TravelDate: NewDate(2025, time.June, 10),
	}

	p, err := Assemble(d)
	require.NoError(t, err)
	assert.Equal(t, p.StartDate, p.EndDate)
	assert.Equal(t, "Bus", p.Mode)
}

func TestAssemble_FirstSelectedModeWins(t *testing.T) {
	// Documented single-record policy: a draft with several transport modes
	// submits only the first in selection order.
	d := NewDraft()
	d.TravelType = TravelDomestic
	d.TripType = TripOneWay
	d.Purpose = "Regional tour"
	d.SelectedModes = []ModeKind{ModeTrain, ModeFlight}
	d.Details[ModeTrain] = &TransportDetail{
		Mode: ModeTrain, From: "Mumbai Central", To: "Delhi Junction",
		TravelDate: NewDate(2025, time.June, 10),
	}
	d.Details[ModeFlight] = &TransportDetail{
		Mode: ModeFlight, From: "Delhi (DEL)", To: "Mumbai (BOM)",
		TravelDate: NewDate(2025, time.June, 15),
	}

	p, err := Assemble(d)
	require.NoError(t, err)
	assert.Equal(t, "Train", p.Mode)
	assert.Equal(t, "Mumbai Central", p.FromCity)
}

func TestAssemble_AccommodationFoldsIntoSameShape(t *testing.T) {
	d := NewDraft()
	d.TravelType = TravelInternational
	d.TripType = TripRoundTrip
	d.Purpose = "Conference"
	d.SelectedModes = []ModeKind{ModeAccommodation, ModeFlight}
	d.Details[ModeAccommodation] = &StayDetail{
		City:    "Singapore",
		CheckIn: NewDate(2025, time.July, 1), CheckOut: NewDate(2025, time.July, 5),
	}

	p, err := Assemble(d)
	require.NoError(t, err)
	assert.Equal(t, "Accommodation", p.Mode)
	assert.Equal(t, "Singapore", p.FromCity)
	assert.Equal(t, "Singapore", p.ToCity)
	assert.Equal(t, "2025-07-01", p.StartDate.String())
	assert.Equal(t, "2025-07-05", p.EndDate.String())
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_SuccessEndsSession(t *testing.T) {
	sub := &fakeSubmitter{id: "itn-42"}
	s := completedSession(t, sub)

	id, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ItineraryID("itn-42"), id)
	assert.True(t, s.Done())
	require.Len(t, sub.submitted, 1)
	assert.Equal(t, "Client workshop", sub.submitted[0].Purpose)
}

func TestSubmit_FailurePreservesDraftForRetry(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("gateway timeout")}
	s := completedSession(t, sub)
	before := *s.Draft()

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.False(t, s.Done())

	// Draft fully intact: retry succeeds without re-entering anything.
	after := *s.Draft()
	assert.Equal(t, before.Purpose, after.Purpose)
	assert.Equal(t, before.SelectedModes, after.SelectedModes)
	assert.Equal(t, before.Details[ModeFlight], after.Details[ModeFlight])

	sub.err = nil
	sub.id = "itn-43"
	id, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ItineraryID("itn-43"), id)
	assert.True(t, s.Done())
}

func TestSubmit_ValidationFailureNeverReachesSubmitter(t *testing.T) {
	sub := &fakeSubmitter{id: "itn-1"}
	s := completedSession(t, sub)
	s.SetPurpose("")

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrMissingPurpose)
	assert.Empty(t, sub.submitted)
}
