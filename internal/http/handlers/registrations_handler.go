package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/covenantconf/registration-api/internal/domain"
	"github.com/covenantconf/registration-api/internal/http/response"
)

func parseListFilter(r *http.Request) (domain.ListFilter, bool) {
	filter := domain.ListFilter{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	vehicle, ok := domain.ParseVehicleFilter(r.URL.Query().Get("vehicle"))
	if !ok {
		return filter, false
	}
	filter.Vehicle = vehicle

	attendance, ok := domain.ParseAttendanceFilter(r.URL.Query().Get("attendance"))
	if !ok {
		return filter, false
	}
	filter.Attendance = attendance

	return filter, true
}

// ListRegistrations returns the filtered admin listing.
func (h *Handlers) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(r)
	if !ok {
		response.BadRequest(w, "Invalid filter parameter")
		return
	}

	registrations, err := h.registrations.List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if registrations == nil {
		registrations = []domain.Registration{}
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"registrations": registrations})
}

var exportHeader = []string{
	"Name", "Contact", "Email", "Church", "Role/Ministry",
	"Has Vehicle", "Plate Number", "Confirmed Attendance", "Date Registered",
}

// ExportRegistrations streams the filtered listing as CSV. Every value
// is quoted, with internal quotes doubled.
func (h *Handlers) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(r)
	if !ok {
		response.BadRequest(w, "Invalid filter parameter")
		return
	}

	registrations, err := h.registrations.List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var sb strings.Builder
	writeCSVRow(&sb, exportHeader)
	for _, reg := range registrations {
		writeCSVRow(&sb, []string{
			reg.FullName,
			reg.ContactNumber,
			orEmpty(reg.Email),
			reg.Church,
			orEmpty(reg.Role),
			yesNo(reg.HasVehicle),
			orEmpty(reg.PlateNumber),
			yesNo(reg.ConfirmedAttendance),
			reg.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=registrations.csv")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(sb.String()))
}

func writeCSVRow(sb *strings.Builder, values []string) {
	for i, value := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(value, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// UpdateRegistration applies an admin edit to a registration.
func (h *Handlers) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input domain.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	reg, err := h.registrations.Update(r.Context(), id, &input)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"registration": reg})
}

type attendanceRequest struct {
	ConfirmedAttendance *bool `json:"confirmedAttendance"`
}

// SetAttendance toggles the attendance confirmation flag.
func (h *Handlers) SetAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ConfirmedAttendance == nil {
		response.BadRequest(w, "Invalid attendance payload.")
		return
	}

	reg, err := h.registrations.SetAttendance(r.Context(), id, *req.ConfirmedAttendance)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"registration": reg})
}
