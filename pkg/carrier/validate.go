package carrier

import (
	"fmt"
	"unicode"
)

// FieldError is a single field-level validation diagnostic.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateRateRequest checks a rate request against the structural schema.
// It returns a VALIDATION_ERROR carrying every field diagnostic, or nil.
// Adapters call this before any network activity.
func ValidateRateRequest(req *RateRequest) error {
	if req == nil {
		return NewError(CodeValidation, "rate request is required")
	}

	var fields []FieldError
	fields = append(fields, validateAddress("shipper", req.Shipper)...)
	fields = append(fields, validateAddress("recipient", req.Recipient)...)

	if len(req.Packages) == 0 {
		fields = append(fields, FieldError{Field: "packages", Message: "at least one package is required"})
	}
	for i, pkg := range req.Packages {
		fields = append(fields, validatePackage(fmt.Sprintf("packages[%d]", i), pkg)...)
	}

	if len(fields) > 0 {
		return NewError(CodeValidation, "invalid rate request").WithDetails(fields)
	}
	return nil
}

func validateAddress(prefix string, addr Address) []FieldError {
	var fields []FieldError

	if !isCountryCode(addr.CountryCode) {
		fields = append(fields, FieldError{
			Field:   prefix + ".countryCode",
			Message: "must be exactly 2 letters",
		})
	}
	if addr.PostalCode == "" {
		fields = append(fields, FieldError{
			Field:   prefix + ".postalCode",
			Message: "must not be empty",
		})
	}
	return fields
}

func validatePackage(prefix string, pkg Package) []FieldError {
	var fields []FieldError

	if pkg.Weight.Value <= 0 {
		fields = append(fields, FieldError{Field: prefix + ".weight.value", Message: "must be positive"})
	}
	switch pkg.Weight.Unit {
	case WeightLB, WeightKG:
	default:
		fields = append(fields, FieldError{Field: prefix + ".weight.unit", Message: `must be "LB" or "KG"`})
	}

	if dims := pkg.Dimensions; dims != nil {
		if dims.Length <= 0 {
			fields = append(fields, FieldError{Field: prefix + ".dimensions.length", Message: "must be positive"})
		}
		if dims.Width <= 0 {
			fields = append(fields, FieldError{Field: prefix + ".dimensions.width", Message: "must be positive"})
		}
		if dims.Height <= 0 {
			fields = append(fields, FieldError{Field: prefix + ".dimensions.height", Message: "must be positive"})
		}
		switch dims.Unit {
		case DimensionIN, DimensionCM:
		default:
			fields = append(fields, FieldError{Field: prefix + ".dimensions.unit", Message: `must be "IN" or "CM"`})
		}
	}
	return fields
}

func isCountryCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
