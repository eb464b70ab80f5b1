package entity

import "strings"

const (
	DefaultState    = "Uttarakhand"
	DefaultDistrict = "Dehradun"

	// allLocationsToken marks an alert that applies everywhere
	allLocationsToken = "all"
)

// Location is the state/district pair a user wants alerts for.
type Location struct {
	State    string `json:"state"`
	District string `json:"district"`
}

func DefaultLocation() Location {
	return Location{State: DefaultState, District: DefaultDistrict}
}

// MatchesLocation reports whether the alert should be shown for loc.
//
// This is a lexical heuristic, not a geographic match: an alert is shown
// when its location is blank, or when its lowercased location contains
// the state, the district, or the token "all".
func (a *HealthAlert) MatchesLocation(loc Location) bool {
	if a.Location == nil || strings.TrimSpace(*a.Location) == "" {
		return true
	}
	alertLocation := strings.ToLower(*a.Location)
	state := strings.ToLower(strings.TrimSpace(loc.State))
	district := strings.ToLower(strings.TrimSpace(loc.District))

	return (state != "" && strings.Contains(alertLocation, state)) ||
		(district != "" && strings.Contains(alertLocation, district)) ||
		strings.Contains(alertLocation, allLocationsToken)
}

// FilterAlerts keeps the alerts visible for loc, preserving order.
func FilterAlerts(alerts []HealthAlert, loc Location) []HealthAlert {
	filtered := make([]HealthAlert, 0, len(alerts))
	for i := range alerts {
		if alerts[i].MatchesLocation(loc) {
			filtered = append(filtered, alerts[i])
		}
	}
	return filtered
}

// IndianStates lists the states offered by the location picker.
var IndianStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram",
	"Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu",
	"Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
}
