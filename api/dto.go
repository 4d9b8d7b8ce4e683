/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the wizard engine, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - itinerary/wizard.go: Session state mirrored by SessionDTO
*/
package api

import (
	"github.com/warp/travel-desk/itinerary"
	"github.com/warp/travel-desk/store/sqlite"
)

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the credential payload for /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the signed-in profile.
type LoginResponse struct {
	Token    string      `json:"token"`
	Employee EmployeeDTO `json:"employee"`
}

// EmployeeDTO represents an employee profile in API responses.
type EmployeeDTO struct {
	EmployeeID  string `json:"employee_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Contact     string `json:"contact_number,omitempty"`
	Designation string `json:"designation,omitempty"`
	Band        string `json:"band,omitempty"`
	Department  string `json:"department,omitempty"`
	Location    string `json:"location,omitempty"`
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		EmployeeID:  e.EmployeeID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Email:       e.Email,
		Contact:     e.Contact,
		Designation: e.Designation,
		Band:        e.Band,
		Department:  e.Department,
		Location:    e.Location,
	}
}

// =============================================================================
// WIZARD SESSION
// =============================================================================

// SetTravelRequest updates the step-2 selections. Empty fields are left
// unchanged so clients can send partial updates.
type SetTravelRequest struct {
	TravelType    string  `json:"travel_type,omitempty"`
	TravelSubType string  `json:"travel_sub_type,omitempty"`
	TripType      string  `json:"trip_type,omitempty"`
	Purpose       *string `json:"purpose,omitempty"`
}

// ModeRequest names a mode for toggle/open operations.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// SetFieldRequest writes one field into the open scratch buffer.
type SetFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// JumpRequest targets a step directly.
type JumpRequest struct {
	Step int `json:"step"`
}

// EditorDTO is the open scratch buffer, if any.
type EditorDTO struct {
	Mode string            `json:"mode"`
	Form map[string]string `json:"form"`
}

// ModeDetailDTO is a committed mode snapshot flattened for display.
type ModeDetailDTO struct {
	Mode   string            `json:"mode"`
	Fields map[string]string `json:"fields"`
}

// SessionDTO is the full wizard state returned after every session call.
type SessionDTO struct {
	Step            int             `json:"step"`
	Done            bool            `json:"done"`
	Employee        EmployeeDTO     `json:"employee"`
	TravelType      string          `json:"travel_type,omitempty"`
	TravelSubType   string          `json:"travel_sub_type,omitempty"`
	TripType        string          `json:"trip_type,omitempty"`
	Purpose         string          `json:"purpose,omitempty"`
	SelectedModes   []string        `json:"selected_modes"`
	Details         []ModeDetailDTO `json:"details"`
	Editor          *EditorDTO      `json:"editor,omitempty"`
	EarliestTravel  string          `json:"earliest_travel_date"`
	AdvanceEstimate string          `json:"advance_estimate"`
}

// SubmitResponse acknowledges a submitted itinerary.
type SubmitResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// ItineraryDTO represents a submitted itinerary record.
type ItineraryDTO struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employee_id"`
	FromCity    string `json:"from_city"`
	ToCity      string `json:"to_city"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"status"`
	Type        string `json:"type,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Purpose     string `json:"purpose,omitempty"`
	RequestDate string `json:"request_date"`
}

func toItineraryDTO(it sqlite.Itinerary) ItineraryDTO {
	return ItineraryDTO{
		ID:          it.ID,
		EmployeeID:  it.EmployeeID,
		FromCity:    it.FromCity,
		ToCity:      it.ToCity,
		StartDate:   it.StartDate,
		EndDate:     it.EndDate,
		Status:      string(it.Status),
		Type:        it.Type,
		Mode:        it.Mode,
		Purpose:     it.Purpose,
		RequestDate: it.RequestDate,
	}
}

// ItineraryListResponse is a paginated dashboard page.
type ItineraryListResponse struct {
	Items  []ItineraryDTO `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// toSessionDTO flattens the live wizard state for clients.
func toSessionDTO(s *itinerary.Session) SessionDTO {
	d := s.Draft()

	dto := SessionDTO{
		Step:           int(s.Step()),
		Done:           s.Done(),
		TravelType:     string(d.TravelType),
		TravelSubType:  string(d.TravelSubType),
		TripType:       string(d.TripType),
		Purpose:        d.Purpose,
		Employee:       toEmployeeDTOFromInfo(d.Employee),
		SelectedModes:  []string{},
		Details:        []ModeDetailDTO{},
		EarliestTravel: s.EarliestDate().String(),
	}

	for _, mode := range d.SelectedModes {
		dto.SelectedModes = append(dto.SelectedModes, string(mode))
		detail, ok := d.Details[mode]
		if !ok {
			continue
		}
		dto.Details = append(dto.Details, ModeDetailDTO{
			Mode:   string(mode),
			Fields: detailFields(detail),
		})
	}

	if mode, open := s.Editing(); open {
		form := s.EditorForm()
		fields := make(map[string]string, len(form))
		for k, v := range form {
			fields[string(k)] = v
		}
		dto.Editor = &EditorDTO{Mode: string(mode), Form: fields}
	}

	dto.AdvanceEstimate = itinerary.AdvanceEstimate(d).StringFixed(2)
	return dto
}

func toEmployeeDTOFromInfo(e itinerary.EmployeeInfo) EmployeeDTO {
	return EmployeeDTO{
		EmployeeID:  e.EmployeeID,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Email:       e.Email,
		Contact:     e.Contact,
		Designation: e.Designation,
		Band:        e.Band,
		Department:  e.Department,
		Location:    e.Location,
	}
}

// detailFields renders a committed detail as field/value pairs, reusing the
// same field names the editor accepts.
func detailFields(detail itinerary.ModeDetail) map[string]string {
	fields := map[string]string{}
	switch d := detail.(type) {
	case *itinerary.TransportDetail:
		fields[string(itinerary.OriginField(d.Mode))] = d.From
		fields[string(itinerary.DestField(d.Mode))] = d.To
		fields[string(itinerary.FieldTravelDate)] = d.TravelDate.String()
		if !d.ReturnDate.IsZero() {
			fields[string(itinerary.FieldReturnDate)] = d.ReturnDate.String()
		}
		if d.PreferredTime != "" {
			fields[string(itinerary.FieldPreferredTime)] = d.PreferredTime
		}
		if d.MealPreference != "" {
			fields[string(itinerary.FieldMealPreference)] = d.MealPreference
		}
		if d.CabRequired != "" {
			fields[string(itinerary.FieldCabRequired)] = d.CabRequired
			fields[string(itinerary.FieldCabDestination)] = d.CabDestination
		}
		if d.ClassPref != "" {
			fields[string(itinerary.FieldClassPref)] = d.ClassPref
		}
	case *itinerary.StayDetail:
		fields[string(itinerary.FieldCity)] = d.City
		fields[string(itinerary.FieldCheckIn)] = d.CheckIn.String()
		fields[string(itinerary.FieldCheckOut)] = d.CheckOut.String()
		if d.Category != "" {
			fields[string(itinerary.FieldCategory)] = d.Category
		}
	}
	return fields
}
