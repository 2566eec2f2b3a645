package model

import "strings"

// Station is one entry of the station directory snapshot. Code is the
// numeric id the government dataset assigns; Slug is the folded name
// used for scraping and fuzzy matching.
type Station struct {
	Name       string `json:"name" groups:"basic,detailed"`
	Code       string `json:"id" groups:"basic,detailed"`
	Slug       string `json:"slug,omitempty" groups:"basic,detailed"`
	Region     string `json:"region,omitempty" groups:"basic,detailed"`
	Importance int    `json:"importance" groups:"detailed"`
}

// StationRegion buckets a station for display grouping.
func StationRegion(name string) string {
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(nameLower, "bucureşti") || strings.Contains(nameLower, "bucurești"):
		return "Bucharest"
	case containsAny(nameLower, "cluj", "timişoara", "timisoara", "iaşi", "iasi"),
		containsAny(nameLower, "constanţa", "constanta", "craiova", "braşov", "brasov"):
		return "Major Cities"
	case containsAny(nameLower, "jud", "târgu", "targu"):
		return "Regional Centers"
	default:
		return "Local"
	}
}

// StationImportance ranks a station for sort order. Lower sorts first.
func StationImportance(name string) int {
	nameLower := strings.ToLower(name)

	switch {
	case strings.Contains(nameLower, "bucureşti nord") || strings.Contains(nameLower, "bucurești nord"):
		return 1
	case strings.Contains(nameLower, "bucureşti") || strings.Contains(nameLower, "bucurești"):
		return 2
	case containsAny(nameLower, "cluj napoca", "cluj-napoca", "timişoara nord", "timisoara nord"):
		return 3
	case containsAny(nameLower, "constanţa", "constanta", "craiova", "braşov", "brasov"):
		return 4
	case containsAny(nameLower, "nord", "est", "vest"):
		return 5
	default:
		return 6
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}
