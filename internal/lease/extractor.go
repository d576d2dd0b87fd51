// Package lease extracts structured details from lease agreement documents
// using rule-based pattern recognition over the document text.
package lease

import (
	"regexp"
	"strings"

	"lease-backend/internal/models"
)

var (
	rentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)base\s*rent[^$]{0,20}\$\s?([\d,]+(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)monthly\s*rent[^$]{0,20}\$\s?([\d,]+(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)rent\s*amount[^$]{0,20}\$\s?([\d,]+(?:\.\d{2})?)`),
	}

	depositPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)security\s*deposit[^$]{0,30}\$\s?([\d,]+(?:\.\d{2})?)`),
	}

	petFeePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)pet\s*(?:fee|deposit|charge)[^$]{0,20}\$\s?([\d,]+(?:\.\d{2})?)`),
	}
	noPetsPattern = regexp.MustCompile(`(?i)no pets|pets?.*not permitted`)

	startDatePattern = regexp.MustCompile(`(?i)(?:begin|effective|from)\s+on\s+([A-Za-z]+\s*\d{1,2},?\s*\d{4})`)
	endDatePattern   = regexp.MustCompile(`(?i)(?:end|until|to)\s+on\s+([A-Za-z]+\s*\d{1,2},?\s*\d{4})`)

	landlordPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([A-Z][a-z]+(?:\s[A-Z][a-z]+){1,3})\s*\(Landlord\)`),
		regexp.MustCompile(`(?i)Landlord[:\s-]+([A-Z][a-z]+(?:\s[A-Z][a-z]+){1,3})`),
	}

	// Tenant names keep their capitalization requirement so the block match
	// stops at the "(... Tenant" marker instead of swallowing prose.
	tenantPattern = regexp.MustCompile(`([A-Z][a-z]+(?:\s[A-Z][a-z]+)?(?:\s*(?:and|,)\s*[A-Z][a-z]+(?:\s[A-Z][a-z]+)?)*)\s*\(.*Tenant`)

	addressPattern         = regexp.MustCompile(`for\s+(\d{3,6}\s+[A-Za-z\s]+,\s*[A-Za-z\s]+,\s*(?:TX|Texas)\s*\d{5})`)
	addressFallbackPattern = regexp.MustCompile(`(\d{3,6}\s+[A-Za-z\s]+(?:Dr|Street|Ave|Road|Ln|Ct)[\s,]+[A-Za-z\s]+,\s*(?:TX|Texas)\s*\d{5})`)

	lateFeePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)late\s*fee[^$]{0,20}\$\s?([\d,]+(?:\.\d{2})?)`),
	}

	nsfFeePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)insufficient\s*funds\s*fee[^$]{0,20}\$\s?([\d,]+(?:\.\d{2})?)`),
		regexp.MustCompile(`(?i)nsf\s*fee[^$]{0,20}\$\s?([\d,]+(?:\.\d{2})?)`),
	}

	depositWaiverPhrase   = "not required to pay a security deposit"
	insuranceNotRequired  = regexp.MustCompile(`(?i)not required to maintain renter.?s insurance`)
	evictionClausePattern = regexp.MustCompile(`(?i)evict|eviction|default|termination notice`)
)

// matchAny returns the first capture group of the first matching pattern.
func matchAny(patterns []*regexp.Regexp, text string) string {
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractFromText runs the rule set over raw lease text and returns the
// structured details with an extraction confidence score.
func ExtractFromText(text string, previewLength int) *models.LeaseDetails {
	// --- Financial details ---
	rent := matchAny(rentPatterns, text)

	deposit := matchAny(depositPatterns, text)
	if strings.Contains(strings.ToLower(text), depositWaiverPhrase) {
		deposit = "0.00"
	}

	petFee := matchAny(petFeePatterns, text)
	petFeeNA := false
	if noPetsPattern.MatchString(text) {
		petFeeNA = true
	}

	// --- Dates ---
	var startDate, endDate string
	if m := startDatePattern.FindStringSubmatch(text); m != nil {
		startDate = m[1]
	}
	if m := endDatePattern.FindStringSubmatch(text); m != nil {
		endDate = m[1]
	}

	// --- Parties ---
	landlord := matchAny(landlordPatterns, text)

	tenant := models.NotFound
	if m := tenantPattern.FindStringSubmatch(text); m != nil {
		tenant = m[1]
	}

	// --- Property address ---
	address := models.NotFound
	if m := addressPattern.FindStringSubmatch(text); m != nil {
		address = m[1]
	} else if m := addressFallbackPattern.FindStringSubmatch(text); m != nil {
		address = m[1]
	}

	// --- Fees and clauses ---
	lateFee := matchAny(lateFeePatterns, text)
	nsfFee := matchAny(nsfFeePatterns, text)

	insuranceRequired := !insuranceNotRequired.MatchString(text)
	evictionClause := evictionClausePattern.MatchString(text)

	// Confidence counts the four fields a usable lease summary cannot do without.
	found := 0
	for _, v := range []string{rent, deposit, startDate, endDate} {
		if v != "" {
			found++
		}
	}
	confidence := float64(found) / 4

	details := &models.LeaseDetails{
		PropertyAddress:       address,
		LandlordName:          orNotFound(landlord),
		TenantNames:           tenant,
		RentAmount:            dollarOrNotFound(rent),
		SecurityDeposit:       dollarOrNotFound(deposit),
		PetFee:                petFeeValue(petFee, petFeeNA),
		LeaseStartDate:        orNotFound(startDate),
		LeaseEndDate:          orNotFound(endDate),
		LateFee:               dollarOrNotFound(lateFee),
		NSFFee:                dollarOrNotFound(nsfFee),
		InsuranceRequired:     insuranceRequired,
		EvictionClausePresent: evictionClause,
		Confidence:            confidence,
		TextPreview:           preview(text, previewLength),
	}

	collapseLineBreaks(details)
	return details
}

func orNotFound(v string) string {
	if v == "" {
		return models.NotFound
	}
	return v
}

func dollarOrNotFound(v string) string {
	if v == "" {
		return models.NotFound
	}
	return "$" + v
}

func petFeeValue(fee string, notApplicable bool) string {
	if notApplicable {
		return models.NotApplicable
	}
	return dollarOrNotFound(fee)
}

func preview(text string, length int) string {
	runes := []rune(text)
	if len(runes) > length {
		return string(runes[:length]) + "..."
	}
	return text + "..."
}

// collapseLineBreaks flattens PDF line wrapping out of every string field.
func collapseLineBreaks(d *models.LeaseDetails) {
	clean := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	}
	d.PropertyAddress = clean(d.PropertyAddress)
	d.LandlordName = clean(d.LandlordName)
	d.TenantNames = clean(d.TenantNames)
	d.RentAmount = clean(d.RentAmount)
	d.SecurityDeposit = clean(d.SecurityDeposit)
	d.PetFee = clean(d.PetFee)
	d.LeaseStartDate = clean(d.LeaseStartDate)
	d.LeaseEndDate = clean(d.LeaseEndDate)
	d.LateFee = clean(d.LateFee)
	d.NSFFee = clean(d.NSFFee)
	d.TextPreview = clean(d.TextPreview)
}
