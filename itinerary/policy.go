/*
policy.go - Travel policy rules

PURPOSE:
  Pure functions computing the policy constraints the wizard enforces:
  minimum advance notice per travel type, required fields per mode, and
  the per-diem travel-advance estimate shown on the review step.

RULES:
  Advance notice:
    Domestic Intra-State   3 days
    Domestic Inter-State   5 days
    International         10 days
    Unset                  3 days (fallback)

  Required fields:
    Flight          from_airport, to_airport, travel_date
    Train           from_station, to_station, travel_date
    Bus             from_city, to_city, travel_date
    Accommodation   city, check_in, check_out

  All functions here are deterministic and side-effect free given the same
  inputs, so they are trivially unit-testable.

SEE ALSO:
  - editor.go: applies RequiredFields and EarliestTravelDate at commit
  - assembler.go: surfaces AdvanceEstimate on the review payload
*/
package itinerary

import "github.com/shopspring/decimal"

// Field names a single editable value in a mode-detail form. Names differ
// lexically per mode (from_airport vs from_station vs from_city) but the
// origin/destination/date triplet is semantically identical across the
// transport modes.
type Field string

const (
	FieldFromAirport Field = "from_airport"
	FieldToAirport   Field = "to_airport"
	FieldFromStation Field = "from_station"
	FieldToStation   Field = "to_station"
	FieldFromCity    Field = "from_city"
	FieldToCity      Field = "to_city"
	FieldTravelDate  Field = "travel_date"
	FieldReturnDate  Field = "return_date"

	FieldCity     Field = "city"
	FieldCheckIn  Field = "check_in"
	FieldCheckOut Field = "check_out"

	// Optional preference fields, never validated.
	FieldPreferredTime  Field = "preferred_time"
	FieldMealPreference Field = "meal_preference"
	FieldCabRequired    Field = "cab_required"
	FieldCabDestination Field = "cab_destination"
	FieldClassPref      Field = "class_preference"
	FieldCategory       Field = "hotel_category"
)

// =============================================================================
// ADVANCE NOTICE
// =============================================================================

// MinimumAdvanceNoticeDays returns the minimum number of days between
// today and the earliest permitted travel date. The sub-type only matters
// for domestic travel.
func MinimumAdvanceNoticeDays(travelType TravelType, subType TravelSubType) int {
	switch travelType {
	case TravelDomestic:
		if subType == SubTypeInterState {
			return 5
		}
		return 3
	case TravelInternational:
		return 10
	}
	return 3
}

// EarliestTravelDate returns the first selectable date for any travel or
// check-in field, given today's date and the draft's travel type.
func EarliestTravelDate(today Date, travelType TravelType, subType TravelSubType) Date {
	return today.AddDays(MinimumAdvanceNoticeDays(travelType, subType))
}

// =============================================================================
// REQUIRED FIELDS
// =============================================================================

// RequiredFields returns the fields that must be non-empty before a mode
// detail can be committed. Round-trip return-date requirements are layered
// on top by the editor, not included here.
func RequiredFields(mode ModeKind) []Field {
	switch mode {
	case ModeFlight:
		return []Field{FieldFromAirport, FieldToAirport, FieldTravelDate}
	case ModeTrain:
		return []Field{FieldFromStation, FieldToStation, FieldTravelDate}
	case ModeBus:
		return []Field{FieldFromCity, FieldToCity, FieldTravelDate}
	case ModeAccommodation:
		return []Field{FieldCity, FieldCheckIn, FieldCheckOut}
	}
	return nil
}

// OriginField and DestField name the per-mode origin/destination fields so
// the editor and assembler can treat the transport modes uniformly.
func OriginField(mode ModeKind) Field {
	switch mode {
	case ModeFlight:
		return FieldFromAirport
	case ModeTrain:
		return FieldFromStation
	default:
		return FieldFromCity
	}
}

func DestField(mode ModeKind) Field {
	switch mode {
	case ModeFlight:
		return FieldToAirport
	case ModeTrain:
		return FieldToStation
	default:
		return FieldToCity
	}
}

// =============================================================================
// TRAVEL ADVANCE - Per-diem estimate shown on the review step
// =============================================================================

// Per-diem day rates by band, in company currency. Bands outside the table
// fall back to the base rate. Decimal keeps the money math exact.
var (
	perDiemBase   = decimal.NewFromInt(1500)
	perDiemByBand = map[string]decimal.Decimal{
		"B1": decimal.NewFromInt(1500),
		"B2": decimal.NewFromInt(2000),
		"B3": decimal.NewFromInt(2750),
		"B4": decimal.NewFromInt(3500),
	}
	internationalFactor = decimal.NewFromFloat(2.5)
)

// AdvanceEstimate computes the suggested travel advance for a draft: the
// band's per-diem rate times the trip length in days, scaled up for
// international travel. Returns zero when no committed detail provides a
// date range yet.
func AdvanceEstimate(d *Draft) decimal.Decimal {
	nights := tripNights(d)
	if nights <= 0 {
		return decimal.Zero
	}

	rate, ok := perDiemByBand[d.Employee.Band]
	if !ok {
		rate = perDiemBase
	}
	total := rate.Mul(decimal.NewFromInt(int64(nights)))
	if d.TravelType == TravelInternational {
		total = total.Mul(internationalFactor)
	}
	return total
}

// tripNights derives the trip length from the primary leg's date range.
// One-way trips count a single day.
func tripNights(d *Draft) int {
	detail := d.Details[d.PrimaryMode()]
	if detail == nil {
		return 0
	}

	switch v := detail.(type) {
	case *TransportDetail:
		if v.ReturnDate.IsZero() {
			return 1
		}
		return v.TravelDate.DaysUntil(v.ReturnDate)
	case *StayDetail:
		return v.CheckIn.DaysUntil(v.CheckOut)
	}
	return 0
}
