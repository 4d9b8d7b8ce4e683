/*
editor.go - Scratch-buffer editing for one mode's details

PURPOSE:
  Manages the edit lifecycle for exactly one travel mode at a time,
  isolating in-progress edits from the committed draft. The user types
  freely into the scratch buffer; validation runs only at commit time.

LIFECYCLE:
  Open    seed the buffer from the committed detail (or empty)
  Set     mutate one field, no validation
  Cancel  discard the buffer, committed draft untouched
  Commit  validate, snapshot into the draft, close the buffer

INVARIANTS:
  - At most one mode is open; opening another discards the previous
    buffer without committing ("switch without saving")
  - A committed detail always has its required fields populated
  - Validation is fail-fast: the first violation is reported, matching
    the fix-one-thing-at-a-time interaction model

SEE ALSO:
  - policy.go: required fields and the advance-notice window
  - wizard.go: owns the editor and forwards draft context
*/
package itinerary

// Form is the scratch buffer: raw string values keyed by field name, the
// shape the frontend's detail form produces. Dates stay unparsed until
// validation so partial input never errors mid-edit.
type Form map[Field]string

// Clone returns an independent copy of the form.
func (f Form) Clone() Form {
	c := make(Form, len(f))
	for k, v := range f {
		c[k] = v
	}
	return c
}

// Editor manages the scratch buffer for the mode currently being edited.
// The zero Editor is ready to use (nothing open).
type Editor struct {
	mode ModeKind
	form Form
	open bool
}

// Open starts editing a mode, seeding the buffer from the draft's committed
// detail for that mode, or an empty form if none exists. Any previously
// open buffer is implicitly discarded.
func (e *Editor) Open(mode ModeKind, d *Draft) error {
	if !mode.Valid() {
		return ErrUnknownMode
	}
	e.mode = mode
	e.open = true
	if detail := d.Details[mode]; detail != nil {
		e.form = formFromDetail(detail)
	} else {
		e.form = make(Form)
	}
	return nil
}

// Editing returns the open mode, or ok=false when nothing is being edited.
func (e *Editor) Editing() (ModeKind, bool) {
	return e.mode, e.open
}

// Set writes one field of the scratch buffer. No validation happens here.
func (e *Editor) Set(field Field, value string) error {
	if !e.open {
		return ErrNoOpenEditor
	}
	e.form[field] = value
	return nil
}

// Form returns a copy of the scratch buffer for display.
func (e *Editor) Form() Form {
	if !e.open {
		return nil
	}
	return e.form.Clone()
}

// Cancel discards the scratch buffer. The committed draft is untouched.
func (e *Editor) Cancel() {
	e.mode = ""
	e.form = nil
	e.open = false
}

// Commit validates the scratch buffer and, on success, writes it into the
// draft as an immutable snapshot, then closes the editor. On failure the
// buffer stays open and the draft is unchanged.
func (e *Editor) Commit(d *Draft, earliest Date) error {
	if !e.open {
		return ErrNoOpenEditor
	}
	detail, err := ValidateForm(e.form, e.mode, d.TripType, earliest)
	if err != nil {
		return err
	}
	d.Details[e.mode] = detail
	e.Cancel()
	return nil
}

// =============================================================================
// VALIDATION - Fail-fast, first violation wins
// =============================================================================

// ValidateForm checks a scratch buffer for a mode and returns the typed
// detail it would commit. Checks run in order:
//  1. every required field present and non-empty
//  2. round-trip transport: return date present and strictly after the
//     travel date
//  3. round-trip accommodation: check-out strictly after check-in
//  4. one-way: any supplied return date is accepted but ignored
// The advance-notice window is checked last so field-level problems are
// reported first.
func ValidateForm(form Form, mode ModeKind, trip TripType, earliest Date) (ModeDetail, error) {
	for _, f := range RequiredFields(mode) {
		if form[f] == "" {
			return nil, &MissingFieldError{Mode: mode, Field: f}
		}
	}

	if mode == ModeAccommodation {
		return validateStay(form, trip, earliest)
	}
	return validateTransport(form, mode, trip, earliest)
}

func validateTransport(form Form, mode ModeKind, trip TripType, earliest Date) (ModeDetail, error) {
	travelDate, err := ParseDate(form[FieldTravelDate])
	if err != nil {
		return nil, err
	}

	var returnDate Date
	if trip == TripRoundTrip {
		if form[FieldReturnDate] == "" {
			return nil, &MissingFieldError{Mode: mode, Field: FieldReturnDate}
		}
		returnDate, err = ParseDate(form[FieldReturnDate])
		if err != nil {
			return nil, err
		}
		if !returnDate.After(travelDate) {
			return nil, &DateOrderError{
				Mode: mode, Start: FieldTravelDate, End: FieldReturnDate,
				StartDate: travelDate, EndDate: returnDate,
			}
		}
	}
	// One-way: a supplied return date is ignored, not an error.

	if !earliest.IsZero() && travelDate.Before(earliest) {
		return nil, &NoticeError{Mode: mode, Field: FieldTravelDate, Date: travelDate, Earliest: earliest}
	}

	return &TransportDetail{
		Mode:           mode,
		From:           form[OriginField(mode)],
		To:             form[DestField(mode)],
		TravelDate:     travelDate,
		ReturnDate:     returnDate,
		PreferredTime:  form[FieldPreferredTime],
		MealPreference: form[FieldMealPreference],
		CabRequired:    form[FieldCabRequired],
		CabDestination: form[FieldCabDestination],
		ClassPref:      form[FieldClassPref],
	}, nil
}

func validateStay(form Form, trip TripType, earliest Date) (ModeDetail, error) {
	checkIn, err := ParseDate(form[FieldCheckIn])
	if err != nil {
		return nil, err
	}
	checkOut, err := ParseDate(form[FieldCheckOut])
	if err != nil {
		return nil, err
	}

	if trip == TripRoundTrip && !checkOut.After(checkIn) {
		return nil, &DateOrderError{
			Mode: ModeAccommodation, Start: FieldCheckIn, End: FieldCheckOut,
			StartDate: checkIn, EndDate: checkOut,
		}
	}

	if !earliest.IsZero() && checkIn.Before(earliest) {
		return nil, &NoticeError{Mode: ModeAccommodation, Field: FieldCheckIn, Date: checkIn, Earliest: earliest}
	}

	return &StayDetail{
		City:     form[FieldCity],
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Category: form[FieldCategory],
	}, nil
}

// formFromDetail rebuilds a scratch buffer from a committed detail so
// re-opening a mode starts from its saved values.
func formFromDetail(detail ModeDetail) Form {
	form := make(Form)
	switch v := detail.(type) {
	case *TransportDetail:
		form[OriginField(v.Mode)] = v.From
		form[DestField(v.Mode)] = v.To
		form[FieldTravelDate] = v.TravelDate.String()
		if !v.ReturnDate.IsZero() {
			form[FieldReturnDate] = v.ReturnDate.String()
		}
		setIf(form, FieldPreferredTime, v.PreferredTime)
		setIf(form, FieldMealPreference, v.MealPreference)
		setIf(form, FieldCabRequired, v.CabRequired)
		setIf(form, FieldCabDestination, v.CabDestination)
		setIf(form, FieldClassPref, v.ClassPref)
	case *StayDetail:
		form[FieldCity] = v.City
		form[FieldCheckIn] = v.CheckIn.String()
		form[FieldCheckOut] = v.CheckOut.String()
		setIf(form, FieldCategory, v.Category)
	}
	return form
}

func setIf(form Form, f Field, v string) {
	if v != "" {
		form[f] = v
	}
}
