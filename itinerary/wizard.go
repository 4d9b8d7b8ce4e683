/*
wizard.go - The four-step creation wizard

PURPOSE:
  Session is the single owner of a draft and its ephemeral wizard state:
  the current step, the mode selection, and the detail editor. Forward
  navigation is gated by per-step validation; backward navigation is
  always free.

STEPS:
  1 Employee      read-only profile display, always passes
  2 Travel Type   travel type and trip type must be chosen
  3 Modes         at least one transport mode, all details committed
  4 Review        read/edit surface, always passes; submission happens here

CONCURRENCY:
  A Session is exclusively owned by one logical thread of control. The
  only asynchronous operations are the one-time profile fetch at start
  and the final submit, each with a single resolution point. No locking
  is needed; serialization is the caller's concern.

SEE ALSO:
  - editor.go: the scratch-buffer lifecycle the session drives
  - assembler.go: payload assembly invoked by Submit
*/
package itinerary

import (
	"context"
	"fmt"
)

// Wizard steps.
const (
	StepEmployee = 1
	StepTravel   = 2
	StepModes    = 3
	StepReview   = 4
)

// ProfileSource supplies the employee record shown on step 1. The engine
// calls it exactly once, at session start.
type ProfileSource interface {
	FetchEmployeeProfile(ctx context.Context) (EmployeeInfo, error)
}

// Session is one employee's wizard run: the draft plus the ephemeral state
// that dies with it. Create with NewSession, then call Start.
type Session struct {
	profiles  ProfileSource
	submitter Submitter

	draft  *Draft
	step   int
	editor Editor
	done   bool

	// Now supplies today's date for advance-notice checks. Overridable in
	// tests; defaults to the wall clock.
	Now func() Date
}

// NewSession creates a session with an empty draft at step 1.
func NewSession(profiles ProfileSource, submitter Submitter) *Session {
	return &Session{
		profiles:  profiles,
		submitter: submitter,
		draft:     NewDraft(),
		step:      StepEmployee,
		Now:       Today,
	}
}

// Start performs the one-time profile fetch. A fetch failure is
// non-blocking: the draft keeps an empty EmployeeInfo and the error is
// returned so the caller can surface a notice.
func (s *Session) Start(ctx context.Context) error {
	if s.profiles == nil {
		return nil
	}
	emp, err := s.profiles.FetchEmployeeProfile(ctx)
	if err != nil {
		return fmt.Errorf("employee profile unavailable: %w", err)
	}
	s.draft.Employee = emp
	return nil
}

// Step returns the current step (1..4).
func (s *Session) Step() int { return s.step }

// Draft exposes the session's draft. The session remains the single owner;
// callers read it and mutate only through session methods.
func (s *Session) Draft() *Draft { return s.draft }

// Done reports whether the draft was submitted successfully.
func (s *Session) Done() bool { return s.done }

// EarliestDate returns the first selectable travel date for the draft's
// current travel type.
func (s *Session) EarliestDate() Date {
	return EarliestTravelDate(s.Now(), s.draft.TravelType, s.draft.TravelSubType)
}

// =============================================================================
// STEP 2 - Travel type and purpose
// =============================================================================

func (s *Session) SetTravelType(t TravelType) {
	s.draft.TravelType = t
}

func (s *Session) SetTravelSubType(st TravelSubType) {
	s.draft.TravelSubType = st
}

func (s *Session) SetTripType(t TripType) {
	s.draft.TripType = t
}

func (s *Session) SetPurpose(p string) {
	s.draft.Purpose = p
}

// =============================================================================
// STEP 3 - Mode selection and detail editing
// =============================================================================

// ToggleMode adds or removes a mode from the selection. Removing a mode
// clears its committed detail and, if that mode is currently being edited,
// discards the in-flight edit. Adding a mode never creates a detail record.
func (s *Session) ToggleMode(mode ModeKind) error {
	if !mode.Valid() {
		return ErrUnknownMode
	}

	for i, m := range s.draft.SelectedModes {
		if m != mode {
			continue
		}
		s.draft.SelectedModes = append(s.draft.SelectedModes[:i], s.draft.SelectedModes[i+1:]...)
		delete(s.draft.Details, mode)
		if editing, open := s.editor.Editing(); open && editing == mode {
			s.editor.Cancel()
		}
		return nil
	}

	s.draft.SelectedModes = append(s.draft.SelectedModes, mode)
	return nil
}

// OpenMode starts editing a selected mode's details.
func (s *Session) OpenMode(mode ModeKind) error {
	if !s.draft.Selected(mode) {
		return fmt.Errorf("%s is not selected: %w", mode, ErrUnknownMode)
	}
	return s.editor.Open(mode, s.draft)
}

// SetField writes one field of the open scratch buffer.
func (s *Session) SetField(field Field, value string) error {
	return s.editor.Set(field, value)
}

// CancelEdit discards the scratch buffer.
func (s *Session) CancelEdit() {
	s.editor.Cancel()
}

// CommitMode validates the scratch buffer and commits it into the draft.
func (s *Session) CommitMode() error {
	return s.editor.Commit(s.draft, s.EarliestDate())
}

// Editing returns the mode currently open for editing, if any.
func (s *Session) Editing() (ModeKind, bool) {
	return s.editor.Editing()
}

// EditorForm returns a copy of the open scratch buffer, or nil.
func (s *Session) EditorForm() Form {
	return s.editor.Form()
}

// =============================================================================
// NAVIGATION - Validated forward edge, unconditional backward edge
// =============================================================================

// Advance moves to the next step iff the current step's validation passes.
// On failure the step is unchanged and the violation is returned.
func (s *Session) Advance() error {
	if err := s.validateStep(s.step); err != nil {
		return err
	}
	if s.step < StepReview {
		s.step++
	}
	return nil
}

// Retreat moves one step back. Backward movement is never validated and
// never goes below step 1.
func (s *Session) Retreat() {
	if s.step > StepEmployee {
		s.step--
	}
}

// JumpTo moves directly to a step. Revisiting a completed step is always
// allowed; jumping forward validates only the step being left, mirroring
// "validate the step you're leaving".
func (s *Session) JumpTo(target int) error {
	if target < StepEmployee || target > StepReview {
		return fmt.Errorf("step %d out of range", target)
	}
	if target <= s.step {
		s.step = target
		return nil
	}
	if err := s.validateStep(s.step); err != nil {
		return err
	}
	s.step = target
	return nil
}

// validateStep is the per-step gate.
func (s *Session) validateStep(step int) error {
	switch step {
	case StepTravel:
		if s.draft.TravelType == TravelUnset || s.draft.TripType == TripUnset {
			return ErrMissingSelection
		}
	case StepModes:
		if !s.draft.HasTransportMode() {
			return ErrNoTransportMode
		}
		if !s.draft.AllDetailsPresent() {
			return ErrIncompleteModeDetails
		}
	}
	// Steps 1 and 4 always pass.
	return nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit assembles the draft and invokes the external submission call.
// Success ends the session; failure leaves the draft fully intact so the
// user may retry without re-entering anything.
func (s *Session) Submit(ctx context.Context) (ItineraryID, error) {
	payload, err := Assemble(s.draft)
	if err != nil {
		return "", err
	}

	id, err := s.submitter.SubmitItinerary(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	s.done = true
	return id, nil
}
