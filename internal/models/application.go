package models

// Application is the persisted rental application record. This is also
// the payload shape posted to the frontend's internal API.
type Application struct {
	ID              string                 `json:"id"`
	ApplicantID     string                 `json:"applicantId"`
	ListingID       string                 `json:"listingId"`
	ApplicationData map[string]interface{} `json:"applicationData"`
	LeaseDetails    *LeaseDetails          `json:"leaseDetails,omitempty"`
	ReadinessScore  int                    `json:"readinessScore"`
	Priority        string                 `json:"priority"`
	Status          string                 `json:"status"`
	SyncStatus      string                 `json:"syncStatus"`
	CreatedAt       string                 `json:"createdAt"`
	UpdatedAt       string                 `json:"updatedAt"`
}

// Application statuses
const (
	StatusSubmitted = "submitted"
	StatusReviewing = "reviewing"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Frontend sync statuses
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncFailed  = "failed"
)

// Priorities returned by routing
const (
	PriorityHigh     = "high"
	PriorityStandard = "standard"
	PriorityLow      = "low"
)

type ApplicationData struct {
	PersonalInfo  PersonalInfo  `json:"personalInfo"`
	FinancialInfo FinancialInfo `json:"financialInfo"`
	RentalHistory RentalHistory `json:"rentalHistory"`
}

type PersonalInfo struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CurrentAddress string `json:"currentAddress,omitempty"`
	MoveInDate     string `json:"moveInDate,omitempty"`
	HouseholdSize  int    `json:"householdSize,omitempty"`
	HasPets        bool   `json:"hasPets,omitempty"`
}

type FinancialInfo struct {
	MonthlyIncome   float64 `json:"monthlyIncome"`
	CreditScore     int     `json:"creditScore,omitempty"`
	EmploymentYears float64 `json:"employmentYears,omitempty"`
	Employer        string  `json:"employer,omitempty"`
}

type RentalHistory struct {
	YearsRenting      int  `json:"yearsRenting"`
	PriorEvictions    int  `json:"priorEvictions,omitempty"`
	LandlordReference bool `json:"landlordReference,omitempty"`
}
