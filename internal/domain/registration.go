package domain

import (
	"strings"
	"time"
)

// RoleOthers is the sentinel role that requires a free-text role value.
const RoleOthers = "Others"

type Registration struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"fullName"`
	ContactNumber       string    `json:"contactNumber"`
	Email               *string   `json:"email"`
	Church              string    `json:"church"`
	Role                *string   `json:"role"`
	HasVehicle          bool      `json:"hasVehicle"`
	PlateNumber         *string   `json:"plateNumber"`
	ConfirmedAttendance bool      `json:"confirmedAttendance"`
	CreatedAt           time.Time `json:"createdAt"`
}

// RegistrationInput is the public submission payload.
type RegistrationInput struct {
	FullName      string `json:"fullName" validate:"required,min=3"`
	ContactNumber string `json:"contactNumber" validate:"required,contact_ph"`
	Email         string `json:"email" validate:"omitempty,email"`
	Church        string `json:"church" validate:"required,min=2"`
	Role          string `json:"role"`
	RoleOther     string `json:"roleOther"`
	HasVehicle    bool   `json:"hasVehicle"`
	PlateNumber   string `json:"plateNumber"`
}

// Normalize trims free-text fields before validation and storage.
func (in *RegistrationInput) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	in.Email = strings.TrimSpace(in.Email)
	in.Church = strings.TrimSpace(in.Church)
	in.Role = strings.TrimSpace(in.Role)
	in.RoleOther = strings.TrimSpace(in.RoleOther)
	in.PlateNumber = strings.TrimSpace(in.PlateNumber)
}

// StoredRole resolves the role value that gets persisted: the free-text
// entry when the Others sentinel is chosen, nil when no role was given.
func (in *RegistrationInput) StoredRole() *string {
	role := in.Role
	if role == RoleOthers {
		role = in.RoleOther
		if role == "" {
			role = RoleOthers
		}
	}
	if role == "" {
		return nil
	}
	return &role
}

// RegistrationPayload is the normalized write-path record. PlateNumber
// is forced nil whenever HasVehicle is false.
type RegistrationPayload struct {
	FullName      string
	ContactNumber string
	Email         *string
	Church        string
	Role          *string
	HasVehicle    bool
	PlateNumber   *string
}

func (in *RegistrationInput) Payload() RegistrationPayload {
	p := RegistrationPayload{
		FullName:      in.FullName,
		ContactNumber: in.ContactNumber,
		Church:        in.Church,
		Role:          in.StoredRole(),
		HasVehicle:    in.HasVehicle,
	}
	if in.Email != "" {
		email := in.Email
		p.Email = &email
	}
	if in.HasVehicle && in.PlateNumber != "" {
		plate := in.PlateNumber
		p.PlateNumber = &plate
	}
	return p
}

type VehicleFilter string

const (
	VehicleAny VehicleFilter = ""
	VehicleYes VehicleFilter = "yes"
	VehicleNo  VehicleFilter = "no"
)

func ParseVehicleFilter(s string) (VehicleFilter, bool) {
	switch VehicleFilter(s) {
	case VehicleAny, VehicleYes, VehicleNo:
		return VehicleFilter(s), true
	default:
		return VehicleAny, false
	}
}

type AttendanceFilter string

const (
	AttendanceAny       AttendanceFilter = ""
	AttendanceConfirmed AttendanceFilter = "yes"
	AttendancePending   AttendanceFilter = "no"
)

func ParseAttendanceFilter(s string) (AttendanceFilter, bool) {
	switch AttendanceFilter(s) {
	case AttendanceAny, AttendanceConfirmed, AttendancePending:
		return AttendanceFilter(s), true
	default:
		return AttendanceAny, false
	}
}

// ListFilter combines the admin listing filters. All fields optional.
type ListFilter struct {
	Query      string
	Vehicle    VehicleFilter
	Attendance AttendanceFilter
}
