// Package validation turns untyped admission payloads into normalized
// types.Admission records, or rejects them with the full list of
// violated constraints.
//
// THE PIPELINE (same for create and update):
//
//	raw payload (map) → coercion → struct validation → derived fields
//
// Coercion is deliberately narrow: a decimal string such as "170.5" is
// accepted for height_cm/weight_kg because form-style clients send
// numbers as strings, but booleans are never treated as numbers and
// non-numeric strings fail. Unknown keys in the payload are IGNORED by
// design — they are neither stored nor an error — as are the derived
// keys "bmi"/"verdict" and the identity key "id", which callers may
// echo back but can never set.
//
// Struct-level rules (required, gt=0, oneof) live as validate:"..."
// tags on types.Admission and are checked with go-playground/validator,
// which reports every failing field rather than stopping at the first.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/aanand-mishra/admissions-api/internal/types"
	"github.com/go-playground/validator/v10"
)

// Error is the failure result of ValidateFull/ValidatePartial.
// Violations holds one human-readable message per broken constraint —
// all of them, not just the first.
type Error struct {
	Violations []string
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Violations, ", ")
}

// validate is a package-level singleton — validator.Validate caches
// struct metadata, so sharing one instance is the documented usage.
// The tag-name func makes error messages report JSON field names
// ("first_name") instead of Go field names ("FirstName").
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// ValidateFull validates a complete payload: every required field must
// be present and well-formed. On success the returned Admission is
// normalized and carries freshly computed BMI/Verdict. On failure the
// error is a *Error listing every violation, and the zero Admission is
// returned.
func ValidateFull(payload map[string]any) (types.Admission, error) {
	var rec types.Admission

	// failed tracks fields that already produced a coercion message so
	// the struct pass does not report them a second time (a field that
	// could not be coerced is left zero, which would also trip
	// "required"/"gt").
	failed := map[string]bool{}
	var violations []string

	report := func(field, msg string) {
		failed[field] = true
		violations = append(violations, msg)
	}

	rec.FirstName = stringField(payload, "first_name", report)
	rec.LastName = stringField(payload, "last_name", report)
	rec.FatherName = stringField(payload, "father_name", report)
	rec.Gender = stringField(payload, "gender", report)
	rec.DateOfBirth = stringField(payload, "date_of_birth", report)
	rec.ClassApplied = stringField(payload, "class_applied", report)
	rec.ContactNumber = stringField(payload, "contact_number", report)
	rec.Status = stringField(payload, "status", report)
	rec.HeightCM = floatField(payload, "height_cm", report)
	rec.WeightKG = floatField(payload, "weight_kg", report)

	if raw, ok := payload["address"]; ok {
		addr, ok := raw.(map[string]any)
		if !ok {
			report("address", "field address must be an object")
			failed["address.city"] = true
			failed["address.state"] = true
		} else {
			rec.Address.City = nestedStringField(addr, "address", "city", report)
			rec.Address.State = nestedStringField(addr, "address", "state", report)
		}
	}

	if err := validate.Struct(rec); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			field := fieldName(fe)
			if failed[field] {
				continue
			}
			violations = append(violations, message(field, fe))
		}
	}

	if len(violations) > 0 {
		return types.Admission{}, &Error{Violations: violations}
	}

	Derive(&rec)
	return rec, nil
}

// ValidatePartial merges patch onto the existing record and validates
// the result as a full payload, recomputing the derived fields.
//
// Merge semantics: patch keys override, absent keys keep their prior
// value, and the nested address object merges PER SUB-FIELD — patching
// only "city" must not erase the stored "state".
func ValidatePartial(existing types.Admission, patch map[string]any) (types.Admission, error) {
	merged := Payload(existing)

	for key, value := range patch {
		if key != "address" {
			merged[key] = value
			continue
		}

		patchAddr, ok := value.(map[string]any)
		if !ok {
			// Not an object — let ValidateFull report it.
			merged[key] = value
			continue
		}
		baseAddr, _ := merged["address"].(map[string]any)
		if baseAddr == nil {
			baseAddr = map[string]any{}
		}
		for k, v := range patchAddr {
			baseAddr[k] = v
		}
		merged["address"] = baseAddr
	}

	return ValidateFull(merged)
}

// Payload converts a record back into the raw-payload shape consumed
// by ValidateFull. Only input fields are included — id and the derived
// fields are reconstructed elsewhere and would be ignored anyway.
func Payload(rec types.Admission) map[string]any {
	return map[string]any{
		"first_name":     rec.FirstName,
		"last_name":      rec.LastName,
		"father_name":    rec.FatherName,
		"gender":         rec.Gender,
		"date_of_birth":  rec.DateOfBirth,
		"class_applied":  rec.ClassApplied,
		"contact_number": rec.ContactNumber,
		"status":         rec.Status,
		"height_cm":      rec.HeightCM,
		"weight_kg":      rec.WeightKG,
		"address": map[string]any{
			"city":  rec.Address.City,
			"state": rec.Address.State,
		},
	}
}

// Derive recomputes the derived fields in place. Called at every
// construction boundary so bmi/verdict can never be stale; callers
// never set these fields directly.
func Derive(rec *types.Admission) {
	rec.BMI = ComputeBMI(rec.HeightCM, rec.WeightKG)
	rec.Verdict = VerdictFor(rec.BMI)
}

// ComputeBMI returns weight_kg / (height_cm/100)^2 rounded to two
// decimal places.
func ComputeBMI(heightCM, weightKG float64) float64 {
	m := heightCM / 100
	return math.Round(weightKG/(m*m)*100) / 100
}

// VerdictFor maps a BMI onto its category. Brackets are half-open with
// an inclusive lower bound: [18.5, 25) is "Normal", 25.0 exactly is
// "Overweight", and so on.
func VerdictFor(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// stringField reads a string key from the payload. A missing key is
// left for the struct "required" rule to flag; a present key of the
// wrong type is a coercion violation (numbers and booleans are never
// silently stringified).
func stringField(payload map[string]any, key string, report func(field, msg string)) string {
	raw, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		report(key, fmt.Sprintf("field %s must be a string", key))
		return ""
	}
	return s
}

func nestedStringField(addr map[string]any, parent, key string, report func(field, msg string)) string {
	raw, ok := addr[key]
	if !ok {
		return ""
	}
	full := parent + "." + key
	s, ok := raw.(string)
	if !ok {
		report(full, fmt.Sprintf("field %s must be a string", full))
		return ""
	}
	return s
}

// floatField reads a numeric key from the payload, coercing decimal
// strings and json.Number values. Booleans are rejected outright —
// true is not 1. Range checking (gt=0) is the struct pass's job.
func floatField(payload map[string]any, key string, report func(field, msg string)) float64 {
	raw, ok := payload[key]
	if !ok {
		return 0
	}

	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			report(key, fmt.Sprintf("field %s must be a number", key))
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			report(key, fmt.Sprintf("field %s must be a number", key))
			return 0
		}
		return f
	default:
		report(key, fmt.Sprintf("field %s must be a number", key))
		return 0
	}
}

// fieldName strips the struct type from the validator namespace:
// "Admission.address.city" → "address.city".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// message renders one FieldError as a plain English sentence, the same
// way for every caller so clients see a consistent vocabulary.
func message(field string, fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("field %s is required", field)
	case "gt":
		return fmt.Sprintf("field %s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("field %s must be one of: %s", field, strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("field %s is invalid", field)
	}
}
