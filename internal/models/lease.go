package models

// LeaseDetails holds the structured fields pulled out of a lease document.
// Monetary and date fields stay strings: they carry sentinel values like
// "Not found" and "Not applicable" alongside real amounts.
type LeaseDetails struct {
	PropertyAddress       string  `json:"propertyAddress"`
	LandlordName          string  `json:"landlordName"`
	TenantNames           string  `json:"tenantNames"`
	RentAmount            string  `json:"rentAmount"`
	SecurityDeposit       string  `json:"securityDeposit"`
	PetFee                string  `json:"petFee"`
	LeaseStartDate        string  `json:"leaseStartDate"`
	LeaseEndDate          string  `json:"leaseEndDate"`
	LateFee               string  `json:"lateFee"`
	NSFFee                string  `json:"nsfFee"`
	InsuranceRequired     bool    `json:"insuranceRequired"`
	EvictionClausePresent bool    `json:"evictionClausePresent"`
	Confidence            float64 `json:"extractionConfidence"`
	TextPreview           string  `json:"leaseTextPreview"`
}

// NotFound is the sentinel for fields the extractor could not locate.
const NotFound = "Not found"

// NotApplicable marks fields explicitly ruled out by the lease text,
// e.g. a pet fee in a no-pets lease.
const NotApplicable = "Not applicable"
