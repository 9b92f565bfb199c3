package domain

import "testing"

func validInput() RegistrationInput {
	return RegistrationInput{
		FullName:      "Juan Dela Cruz",
		ContactNumber: "09171234567",
		Email:         "juan@example.com",
		Church:        "Grace Fellowship",
		HasVehicle:    false,
	}
}

func TestValidateAcceptsWellFormedInput(t *testing.T) {
	in := validInput()
	in.Normalize()
	if errs := in.Validate(); errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
}

func TestValidateFullName(t *testing.T) {
	in := validInput()
	in.FullName = "Jo"
	in.Normalize()

	errs := in.Validate()
	if errs == nil {
		t.Fatal("expected validation error for short name")
	}
	if _, ok := errs["fullName"]; !ok {
		t.Errorf("expected fullName error, got %v", errs)
	}
}

func TestValidateContactNumber(t *testing.T) {
	bad := []string{"0917123456", "091712345678", "9171234567", "091712345a7", "+639171234567", ""}
	for _, number := range bad {
		in := validInput()
		in.ContactNumber = number
		in.Normalize()

		errs := in.Validate()
		if errs == nil {
			t.Errorf("contact %q should fail validation", number)
			continue
		}
		if _, ok := errs["contactNumber"]; !ok {
			t.Errorf("contact %q: expected contactNumber error, got %v", number, errs)
		}
	}
}

func TestValidateEmailOptional(t *testing.T) {
	in := validInput()
	in.Email = ""
	in.Normalize()
	if errs := in.Validate(); errs != nil {
		t.Fatalf("empty email should be accepted, got %v", errs)
	}

	in = validInput()
	in.Email = "not-an-email"
	in.Normalize()
	errs := in.Validate()
	if errs == nil {
		t.Fatal("malformed email should fail validation")
	}
	if _, ok := errs["email"]; !ok {
		t.Errorf("expected email error, got %v", errs)
	}
}

func TestValidatePlateRequiredWithVehicle(t *testing.T) {
	in := validInput()
	in.HasVehicle = true
	in.PlateNumber = "   "
	in.Normalize()

	errs := in.Validate()
	if errs == nil {
		t.Fatal("expected plate number error")
	}
	if _, ok := errs["plateNumber"]; !ok {
		t.Errorf("expected plateNumber error, got %v", errs)
	}
}

func TestPayloadDiscardsPlateWithoutVehicle(t *testing.T) {
	in := validInput()
	in.HasVehicle = false
	in.PlateNumber = "ABC-123"
	in.Normalize()

	payload := in.Payload()
	if payload.PlateNumber != nil {
		t.Errorf("plate number should be discarded without a vehicle, got %q", *payload.PlateNumber)
	}
}

func TestPayloadKeepsPlateWithVehicle(t *testing.T) {
	in := validInput()
	in.HasVehicle = true
	in.PlateNumber = "ABC-123"
	in.Normalize()

	payload := in.Payload()
	if payload.PlateNumber == nil || *payload.PlateNumber != "ABC-123" {
		t.Errorf("plate number not kept: %v", payload.PlateNumber)
	}
}

func TestStoredRoleOthersUsesFreeText(t *testing.T) {
	in := validInput()
	in.Role = RoleOthers
	in.RoleOther = "Ushering"
	in.Normalize()

	if errs := in.Validate(); errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	role := in.StoredRole()
	if role == nil || *role != "Ushering" {
		t.Errorf("stored role = %v, want Ushering", role)
	}
}

func TestValidateOthersRequiresFreeText(t *testing.T) {
	in := validInput()
	in.Role = RoleOthers
	in.RoleOther = ""
	in.Normalize()

	errs := in.Validate()
	if errs == nil {
		t.Fatal("expected roleOther error")
	}
	if _, ok := errs["roleOther"]; !ok {
		t.Errorf("expected roleOther error, got %v", errs)
	}
}

func TestStoredRoleEmptyIsNil(t *testing.T) {
	in := validInput()
	in.Role = ""
	in.Normalize()

	if role := in.StoredRole(); role != nil {
		t.Errorf("stored role = %q, want nil", *role)
	}
}
