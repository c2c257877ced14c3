package carrier

// WeightUnit represents a weight measurement unit.
type WeightUnit string

const (
	WeightLB WeightUnit = "LB"
	WeightKG WeightUnit = "KG"
)

// DimensionUnit represents a dimension measurement unit.
type DimensionUnit string

const (
	DimensionIN DimensionUnit = "IN"
	DimensionCM DimensionUnit = "CM"
)

// Address represents a shipping address.
// CountryCode is ISO 3166-1 alpha-2 (e.g., "US", "CA").
type Address struct {
	CountryCode   string `json:"countryCode"`
	PostalCode    string `json:"postalCode"`
	StateProvince string `json:"stateProvince,omitempty"`
	City          string `json:"city,omitempty"`
	AddressLine1  string `json:"addressLine1,omitempty"`
	AddressLine2  string `json:"addressLine2,omitempty"`
}

// Weight represents a package weight.
type Weight struct {
	Value float64    `json:"value"`
	Unit  WeightUnit `json:"unit"`
}

// Dimensions represents package dimensions.
type Dimensions struct {
	Length float64       `json:"length"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Unit   DimensionUnit `json:"unit"`
}

// Package represents a package to be rated.
type Package struct {
	Weight     Weight      `json:"weight"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// Money represents a monetary amount. The amount is kept as the carrier's
// exact decimal string so no precision is lost to float rounding.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// RateRequest is the normalized request for rate quotes.
// ServiceLevel, when set, forces that carrier-specific service code and
// filters the response down to it.
type RateRequest struct {
	Shipper      Address   `json:"shipper"`
	Recipient    Address   `json:"recipient"`
	Packages     []Package `json:"packages"`
	ServiceLevel string    `json:"serviceLevel,omitempty"`
}

// RateQuote represents one priced service option from a carrier.
type RateQuote struct {
	Carrier      string   `json:"carrier"`
	ServiceLevel string   `json:"serviceLevel"`
	ServiceName  string   `json:"serviceName,omitempty"`
	Total        Money    `json:"total"`
	DeliveryDays *int     `json:"deliveryDays,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

// RateResponse holds quotes in the order the carrier returned them.
type RateResponse struct {
	Quotes []RateQuote `json:"quotes"`
}
