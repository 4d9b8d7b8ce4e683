/*
assembler.go - Canonical payload assembly and submission

PURPOSE:
  Transforms a completed draft into the canonical single-leg request
  payload and hands it to the external submission endpoint.

PRIMARY-LEG POLICY:
  The first mode in selection order is the authoritative leg; any other
  selected modes are not represented in the payload. This preserves the
  source system's documented single-record simplification rather than
  silently widening the contract (multi-leg submission is an open product
  question, recorded in DESIGN.md).

SEE ALSO:
  - wizard.go: Session.Submit drives this
  - api: the service-side Submitter implementation
*/
package itinerary

import "context"

// ItineraryID identifies a submitted itinerary record.
type ItineraryID string

// Payload is the canonical submission request. Dates are ISO 8601.
type Payload struct {
	FromCity  string     `json:"from_city"`
	ToCity    string     `json:"to_city"`
	StartDate Date       `json:"start_date"`
	EndDate   Date       `json:"end_date"`
	Type      TravelType `json:"type"`
	Mode      string     `json:"mode"`
	Purpose   string     `json:"purpose"`
}

// Submitter is the external submission endpoint. Transport details are out
// of the engine's scope.
type Submitter interface {
	SubmitItinerary(ctx context.Context, p Payload) (ItineraryID, error)
}

// Assemble builds the payload from a draft. The submission-time gates
// (purpose, mode selection, primary detail) are logically unreachable when
// the step gates were enforced, but are re-checked defensively here.
func Assemble(d *Draft) (Payload, error) {
	if d.Purpose == "" {
		return Payload{}, ErrMissingPurpose
	}
	primary := d.PrimaryMode()
	if primary == "" {
		return Payload{}, ErrNoModeSelected
	}
	detail := d.Details[primary]
	if detail == nil {
		return Payload{}, ErrIncompleteModeDetails
	}

	p := Payload{
		Type:    d.TravelType,
		Mode:    primary.Title(),
		Purpose: d.Purpose,
	}

	switch v := detail.(type) {
	case *TransportDetail:
		p.FromCity = v.From
		p.ToCity = v.To
		p.StartDate = v.TravelDate
		p.EndDate = v.TravelDate
		if d.TripType == TripRoundTrip && !v.ReturnDate.IsZero() {
			p.EndDate = v.ReturnDate
		}
	case *StayDetail:
		// Accommodation folds into the same shape: the city serves as both
		// origin and destination, check-in/out as the date range.
		p.FromCity = v.City
		p.ToCity = v.City
		p.StartDate = v.CheckIn
		p.EndDate = v.CheckOut
	}

	return p, nil
}
