/*
Package itinerary provides the work-travel draft workflow engine.

PURPOSE:
  This package contains the stateful core of the travel-desk service: the
  four-step creation wizard, the per-mode detail editor with its scratch
  buffer, the layered validation rules that gate every forward transition,
  and the assembler that turns a completed draft into the canonical
  submission payload.

KEY CONCEPTS IN THIS FILE (types.go):
  - ModeKind: one travel leg kind (flight, train, bus, accommodation)
  - ModeDetail: a variant detail record keyed by ModeKind
  - Draft: the central mutable entity, owned by one wizard session
  - EmployeeInfo: read-only employee data copied into the draft

DESIGN PRINCIPLES:
  1. One owner: a Draft belongs to exactly one Session, never shared
  2. Committed details are snapshots; in-progress edits live in the editor
  3. Variant shapes are concrete types behind ModeDetail, so validation
     and assembly are exhaustive switches
  4. Selection order is preserved: the first selected mode is the
     authoritative leg at submission

SEE ALSO:
  - policy.go: advance-notice and required-field rules
  - editor.go: scratch-buffer edit lifecycle
  - wizard.go: step state machine and mode selection
  - assembler.go: payload assembly and submission
*/
package itinerary

// =============================================================================
// ENUMS
// =============================================================================

// ModeKind identifies one travel leg kind. Values match the form keys the
// frontend uses; Title() produces the capitalized payload spelling.
type ModeKind string

const (
	ModeFlight        ModeKind = "flight"
	ModeTrain         ModeKind = "train"
	ModeBus           ModeKind = "bus"
	ModeAccommodation ModeKind = "accommodation"
)

// AllModes lists every mode in display order.
var AllModes = []ModeKind{ModeFlight, ModeTrain, ModeBus, ModeAccommodation}

// IsTransport reports whether the mode moves the traveler (everything but
// accommodation).
func (m ModeKind) IsTransport() bool {
	return m == ModeFlight || m == ModeTrain || m == ModeBus
}

// Valid reports whether m is a known mode kind.
func (m ModeKind) Valid() bool {
	switch m {
	case ModeFlight, ModeTrain, ModeBus, ModeAccommodation:
		return true
	}
	return false
}

// Title returns the capitalized mode name used in the submission payload.
func (m ModeKind) Title() string {
	switch m {
	case ModeFlight:
		return "Flight"
	case ModeTrain:
		return "Train"
	case ModeBus:
		return "Bus"
	case ModeAccommodation:
		return "Accommodation"
	}
	return string(m)
}

type TravelType string

const (
	TravelUnset         TravelType = ""
	TravelDomestic      TravelType = "Domestic"
	TravelInternational TravelType = "International"
)

// TravelSubType is meaningful only for domestic travel. Defaults to
// intra-state.
type TravelSubType string

const (
	SubTypeIntraState TravelSubType = "Intra-State"
	SubTypeInterState TravelSubType = "Inter-State"
)

type TripType string

const (
	TripUnset     TripType = ""
	TripOneWay    TripType = "One-way"
	TripRoundTrip TripType = "Round-trip"
)

// =============================================================================
// EMPLOYEE INFO - Read-only, externally supplied
// =============================================================================

// EmployeeInfo is fetched once at wizard start and copied into the draft.
// It is never mutated by the engine. A zero EmployeeInfo is valid: a failed
// profile fetch leaves the fields empty rather than blocking the wizard.
type EmployeeInfo struct {
	EmployeeID  string
	FirstName   string
	LastName    string
	Email       string
	Contact     string
	Designation string
	Band        string
	Department  string
	Location    string
}

// FullName joins the name parts for display.
func (e EmployeeInfo) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// =============================================================================
// MODE DETAIL - Variant record keyed by ModeKind
// =============================================================================

// ModeDetail is a committed detail record for one selected mode. Concrete
// types are TransportDetail and StayDetail. A committed detail always has
// its required fields populated; partial data only ever exists in the
// editor's scratch buffer.
type ModeDetail interface {
	Kind() ModeKind
}

// TransportDetail is the shared shape for flight, train and bus legs.
// ReturnDate is zero for one-way trips. The preference fields are optional
// and never validated.
type TransportDetail struct {
	Mode       ModeKind
	From       string
	To         string
	TravelDate Date
	ReturnDate Date

	PreferredTime  string // flight: Morning/Afternoon/Evening
	MealPreference string // flight
	CabRequired    string // flight: Yes/No
	CabDestination string // flight, when CabRequired is Yes
	ClassPref      string // train: 2AC/3AC
}

func (d *TransportDetail) Kind() ModeKind { return d.Mode }

// StayDetail is the accommodation shape.
type StayDetail struct {
	City     string
	CheckIn  Date
	CheckOut Date
	Category string // Standard/Premium, optional
}

func (d *StayDetail) Kind() ModeKind { return ModeAccommodation }

// =============================================================================
// DRAFT - The central mutable entity
// =============================================================================

// Draft is the in-progress, not-yet-submitted itinerary request. It is
// created empty at wizard entry, populated incrementally across steps, and
// consumed exactly once on a successful submit.
type Draft struct {
	Employee      EmployeeInfo
	TravelType    TravelType
	TravelSubType TravelSubType
	TripType      TripType
	Purpose       string

	// SelectedModes preserves insertion order; membership is unique.
	SelectedModes []ModeKind

	// Details maps a selected mode to its committed detail. A mode present
	// in SelectedModes with no entry here is selected but not yet filled.
	Details map[ModeKind]ModeDetail
}

// NewDraft returns an empty draft with the domestic sub-type defaulted.
func NewDraft() *Draft {
	return &Draft{
		TravelSubType: SubTypeIntraState,
		Details:       make(map[ModeKind]ModeDetail),
	}
}

// Selected reports whether the mode is currently chosen.
func (d *Draft) Selected(mode ModeKind) bool {
	for _, m := range d.SelectedModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Detail returns the committed detail for a mode, or nil if none exists.
func (d *Draft) Detail(mode ModeKind) ModeDetail {
	return d.Details[mode]
}

// HasTransportMode reports whether at least one of flight/train/bus is
// selected. Accommodation alone never satisfies the step-3 gate.
func (d *Draft) HasTransportMode() bool {
	for _, m := range d.SelectedModes {
		if m.IsTransport() {
			return true
		}
	}
	return false
}

// AllDetailsPresent reports whether every selected mode has a committed
// detail record.
func (d *Draft) AllDetailsPresent() bool {
	for _, m := range d.SelectedModes {
		if d.Details[m] == nil {
			return false
		}
	}
	return true
}

// PrimaryMode returns the first mode in selection order, the authoritative
// leg for payload assembly. Returns "" when nothing is selected.
func (d *Draft) PrimaryMode() ModeKind {
	if len(d.SelectedModes) == 0 {
		return ""
	}
	return d.SelectedModes[0]
}
