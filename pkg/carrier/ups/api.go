package ups

import (
	"fmt"
	"strings"
)

// Request options supported by the UPS Rating API. The option is also the
// final URL path segment.
const (
	// RequestOptionRate rates one explicitly selected service.
	RequestOptionRate = "Rate"
	// RequestOptionShop rates every service available for the shipment.
	RequestOptionShop = "Shop"
)

// rateURL builds the rating endpoint URL: {baseURL}/rating/{version}/{option}.
func rateURL(baseURL, version, requestOption string) string {
	return strings.TrimRight(baseURL, "/") + "/rating/" + version + "/" + requestOption
}

// ============================================================================
// Wire request types (match the UPS Rating API JSON structure)
//
// UPS types every numeric field as a string; values are serialized as decimal
// strings so nothing drifts through float formatting.
// ============================================================================

// RateRequestBody is the POST body envelope.
type RateRequestBody struct {
	RateRequest RateRequestElement `json:"RateRequest"`
}

// RateRequestElement wraps the shipment being rated.
type RateRequestElement struct {
	Request  struct{} `json:"Request"`
	Shipment Shipment `json:"Shipment"`
}

// Shipment describes the parties, packages, and optionally a forced service.
type Shipment struct {
	Shipper ShipmentParty `json:"Shipper"`
	ShipTo  ShipmentParty `json:"ShipTo"`
	Package []Package     `json:"Package"`
	Service *ServiceCode  `json:"Service,omitempty"`
}

// ShipmentParty holds a party's address block.
type ShipmentParty struct {
	Address Address `json:"Address"`
}

// Address is the UPS address block.
type Address struct {
	CountryCode       string   `json:"CountryCode"`
	PostalCode        string   `json:"PostalCode"`
	StateProvinceCode string   `json:"StateProvinceCode,omitempty"`
	City              string   `json:"City,omitempty"`
	AddressLine       []string `json:"AddressLine,omitempty"`
}

// ServiceCode selects a single UPS service.
type ServiceCode struct {
	Code string `json:"Code"`
}

// Package is the UPS package block.
type Package struct {
	PackageWeight PackageWeight `json:"PackageWeight"`
	Dimensions    *Dimensions   `json:"Dimensions,omitempty"`
}

// PackageWeight carries the weight as a stringified decimal plus unit code.
type PackageWeight struct {
	UnitOfMeasurement UnitOfMeasurement `json:"UnitOfMeasurement"`
	Weight            string            `json:"Weight"`
}

// Dimensions carries each dimension as a stringified decimal plus unit code.
type Dimensions struct {
	UnitOfMeasurement UnitOfMeasurement `json:"UnitOfMeasurement"`
	Length            string            `json:"Length"`
	Width             string            `json:"Width"`
	Height            string            `json:"Height"`
}

// UnitOfMeasurement holds a UPS unit code ("LB", "KG", "IN", "CM").
type UnitOfMeasurement struct {
	Code string `json:"Code"`
}

// ============================================================================
// Wire response types
// ============================================================================

// RateResponseBody is the rating response envelope.
type RateResponseBody struct {
	RateResponse *RateResponseElement `json:"RateResponse"`
}

// RateResponseElement holds the rated services. RatedShipment is a pointer
// so a missing list can be told apart from an empty one: absent is a schema
// mismatch, empty is simply no available services.
type RateResponseElement struct {
	RatedShipment *[]RatedShipment `json:"RatedShipment"`
}

// RatedShipment is one rated service entry.
type RatedShipment struct {
	Service            *RatedService       `json:"Service"`
	TotalCharges       *TotalCharges       `json:"TotalCharges"`
	GuaranteedDelivery *GuaranteedDelivery `json:"GuaranteedDelivery"`
	RatedShipmentAlert []Alert             `json:"RatedShipmentAlert"`
}

// RatedService identifies the rated service.
type RatedService struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

// TotalCharges is the total price for the service.
type TotalCharges struct {
	MonetaryValue string `json:"MonetaryValue"`
	CurrencyCode  string `json:"CurrencyCode"`
}

// GuaranteedDelivery holds the transit commitment when UPS guarantees one.
type GuaranteedDelivery struct {
	BusinessDaysInTransit string `json:"BusinessDaysInTransit"`
}

// Alert is an advisory attached to a rated service.
type Alert struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

// validateRateResponse checks the decoded response against the expected
// shape and returns field-level diagnostics for every mismatch.
func validateRateResponse(body *RateResponseBody) []string {
	var problems []string

	if body.RateResponse == nil {
		return []string{"RateResponse: required"}
	}
	if body.RateResponse.RatedShipment == nil {
		return []string{"RateResponse.RatedShipment: required"}
	}

	for i, rs := range *body.RateResponse.RatedShipment {
		if rs.Service == nil || rs.Service.Code == "" {
			problems = append(problems, fmt.Sprintf("RateResponse.RatedShipment[%d].Service.Code: required", i))
		}
		if rs.TotalCharges == nil {
			problems = append(problems, fmt.Sprintf("RateResponse.RatedShipment[%d].TotalCharges: required", i))
			continue
		}
		if rs.TotalCharges.MonetaryValue == "" {
			problems = append(problems, fmt.Sprintf("RateResponse.RatedShipment[%d].TotalCharges.MonetaryValue: required", i))
		}
		if rs.TotalCharges.CurrencyCode == "" {
			problems = append(problems, fmt.Sprintf("RateResponse.RatedShipment[%d].TotalCharges.CurrencyCode: required", i))
		}
	}
	return problems
}
