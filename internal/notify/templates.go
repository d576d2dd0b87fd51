package notify

import (
	"fmt"
	"strings"

	"lease-backend/internal/models"
)

// Template is a subject/body pair with {{placeholder}} substitution.
type Template struct {
	Subject string
	Body    string
}

func defaultTemplates() map[string]Template {
	return map[string]Template{
		models.NotificationNewApplication: {
			Subject: "New Rental Application Received",
			Body: "A new application {{applicationId}} was submitted for listing {{listingId}}. " +
				"Priority: {{priority}}, readiness score: {{readinessScore}}.",
		},
		models.NotificationApplicationSubmitted: {
			Subject: "Your Application Was Submitted",
			Body: "Your application {{applicationId}} for listing {{listingId}} was received " +
				"and is now under review.",
		},
	}
}

// renderTemplate substitutes known placeholders and strips the rest.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Remaining placeholders had no value; drop them.
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
