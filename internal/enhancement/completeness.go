package enhancement

import (
	"fmt"
	"strings"

	"resume-pipeline/internal/resumes"
)

// requiredFields is the checklist completeness is measured against.
var requiredFields = []string{"name", "email", "phone", "skills", "experience", "education"}

// ScoreCompleteness reports the percentage of required fields that are
// non-empty along with the names of the missing ones.
func ScoreCompleteness(parsed *resumes.ParsedPayload) resumes.Completeness {
	present := map[string]bool{
		"name":       parsed.Name != "",
		"email":      parsed.Email != "",
		"phone":      parsed.Phone != "",
		"skills":     len(parsed.Skills) > 0,
		"experience": parsed.Experience != "",
		"education":  parsed.Education != "",
	}

	filled := 0
	var missing []string
	for _, field := range requiredFields {
		if present[field] {
			filled++
		} else {
			missing = append(missing, field)
		}
	}

	return resumes.Completeness{
		Score:         100 * float64(filled) / float64(len(requiredFields)),
		MissingFields: missing,
	}
}

// Suggest derives rule-based improvement hints from the parsed fields.
func Suggest(parsed *resumes.ParsedPayload, completeness resumes.Completeness) []string {
	var out []string

	if parsed.Email != "" && !strings.Contains(parsed.Email, "@") {
		out = append(out, "The email address looks malformed; double-check it.")
	}
	if parsed.Email == "" {
		out = append(out, "Add an email address so employers can reach you.")
	}
	if parsed.Phone == "" {
		out = append(out, "Add a phone number as an alternate contact method.")
	}
	if n := len(parsed.Skills); n > 0 && n < 5 {
		out = append(out, "List more skills; resumes with five or more skills are easier to match to roles.")
	}
	if parsed.Experience != "" && len(strings.Fields(parsed.Experience)) < 20 {
		out = append(out, "Expand the experience section with responsibilities and outcomes.")
	}
	if parsed.Education != "" && len(strings.Fields(parsed.Education)) < 4 {
		out = append(out, "Add detail to the education entry, such as degree and institution.")
	}
	for _, field := range completeness.MissingFields {
		switch field {
		case "email", "phone":
			// already covered above
		default:
			out = append(out, fmt.Sprintf("Add a %s section to the resume.", field))
		}
	}
	return out
}
