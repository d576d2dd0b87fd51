package intake

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"lease-backend/internal/common/errors"
)

// submissionSchema validates the application payload shape before any
// business rules run.
const submissionSchema = `{
	"type": "object",
	"required": ["applicantId", "listingId", "applicationData"],
	"properties": {
		"applicantId": {"type": "string", "minLength": 1},
		"listingId": {"type": "string", "minLength": 1},
		"leaseFilePath": {"type": "string"},
		"applicationData": {
			"type": "object",
			"required": ["personalInfo", "financialInfo"],
			"properties": {
				"personalInfo": {
					"type": "object",
					"required": ["name", "email", "phone"],
					"properties": {
						"name": {"type": "string", "minLength": 1},
						"email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$"},
						"phone": {"type": "string", "minLength": 7},
						"householdSize": {"type": "integer", "minimum": 1, "maximum": 20}
					}
				},
				"financialInfo": {
					"type": "object",
					"required": ["monthlyIncome"],
					"properties": {
						"monthlyIncome": {"type": "number", "minimum": 0},
						"creditScore": {"type": "integer", "minimum": 300, "maximum": 850},
						"employmentYears": {"type": "number", "minimum": 0}
					}
				},
				"rentalHistory": {
					"type": "object",
					"properties": {
						"yearsRenting": {"type": "integer", "minimum": 0},
						"priorEvictions": {"type": "integer", "minimum": 0}
					}
				}
			}
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(submissionSchema)

// ValidateSubmission checks a raw submission payload against the schema.
func ValidateSubmission(payload map[string]interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(payload))
	if err != nil {
		return errors.NewApplicationValidationFailedError(fmt.Sprintf("schema evaluation: %v", err))
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return errors.NewApplicationValidationFailedError(strings.Join(details, "; "))
	}

	return nil
}
