package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func alertAt(location string) HealthAlert {
	if location == "" {
		return HealthAlert{}
	}
	return HealthAlert{Location: &location}
}

func TestMatchesLocation(t *testing.T) {
	punjab := Location{State: "Punjab", District: "Ludhiana"}
	kerala := Location{State: "Kerala", District: "Kochi"}

	cases := []struct {
		location string
		loc      Location
		want     bool
	}{
		{"", punjab, true},
		{"   ", punjab, true},
		{"All", punjab, true},
		{"all states", kerala, true},
		{"Kerala", punjab, false},
		{"Kerala", kerala, true},
		{"KERALA coast", kerala, true},
		{"Ludhiana district", punjab, true},
		{"Dehradun", kerala, false},
	}

	for _, tc := range cases {
		alert := alertAt(tc.location)
		assert.Equal(t, tc.want, alert.MatchesLocation(tc.loc), "alert %q for %+v", tc.location, tc.loc)
	}
}

func TestMatchesLocationIgnoresBlankSelection(t *testing.T) {
	alert := alertAt("Kerala")
	assert.False(t, alert.MatchesLocation(Location{}))
}

func TestFilterAlertsKeepsOrder(t *testing.T) {
	alerts := []HealthAlert{alertAt("Kerala"), alertAt("All"), alertAt("Punjab"), alertAt("")}
	alerts[0].Title, alerts[1].Title, alerts[2].Title, alerts[3].Title = "a", "b", "c", "d"

	got := FilterAlerts(alerts, Location{State: "Punjab", District: "Amritsar"})

	titles := make([]string, len(got))
	for i := range got {
		titles[i] = got[i].Title
	}
	assert.Equal(t, []string{"b", "c", "d"}, titles)
}

func TestDefaultLocation(t *testing.T) {
	assert.Equal(t, Location{State: "Uttarakhand", District: "Dehradun"}, DefaultLocation())
}
