// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, service, storage, and validation can all import types
// without depending on each other.
package types

// Address is the nested location entity inside an Admission.
//
// It is a value struct (not a pointer) so the validator descends into
// it automatically and a zero Address fails the required checks on its
// fields rather than slipping through as nil.
type Address struct {
	City  string `json:"city"  validate:"required"`
	State string `json:"state" validate:"required"`
}

// Gender values accepted by the validator ("oneof" below).
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Admission represents one admission record in the system.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field appears when encoded to JSON
//     (snake_case names match the REST API conventions).
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required" means non-zero / non-empty; "gt=0" rejects
//     zero and negative measurements (and therefore also flags a
//     missing measurement, whose zero value fails the same rule);
//     "oneof" restricts gender to the enumerated values.
//
// ID is assigned by the caller on create and immutable afterwards. It
// is the key of the persisted mapping, not part of the stored snapshot
// — hence "omitempty": the service blanks it before saving and
// reattaches it on read.
//
// BMI and Verdict are DERIVED fields. They are never accepted from a
// caller; the validation package recomputes them on every create and
// every update so they can never go stale (see validation.Derive).
type Admission struct {
	ID            string  `json:"id,omitempty"`
	FirstName     string  `json:"first_name"     validate:"required"`
	LastName      string  `json:"last_name"      validate:"required"`
	FatherName    string  `json:"father_name"    validate:"required"`
	Gender        string  `json:"gender"         validate:"required,oneof=male female other"`
	DateOfBirth   string  `json:"date_of_birth"  validate:"required"`
	ClassApplied  string  `json:"class_applied"  validate:"required"`
	ContactNumber string  `json:"contact_number" validate:"required"`
	HeightCM      float64 `json:"height_cm"      validate:"gt=0"`
	WeightKG      float64 `json:"weight_kg"      validate:"gt=0"`
	Address       Address `json:"address"`
	Status        string  `json:"status"         validate:"required"`

	// Derived — computed from height_cm/weight_kg, never caller-settable.
	BMI     float64 `json:"bmi"`
	Verdict string  `json:"verdict"`
}
