package domain

import (
	"fmt"
	"strings"
)

// Severe condition labels.
const (
	ConditionExtremeHeat = "Extreme Heat"
	ConditionFreezing    = "Freezing Conditions"
	ConditionThunder     = "Thunderstorm"
	ConditionTornado     = "Tornado"
	ConditionHurricane   = "Hurricane"
	ConditionHeavySnow   = "Heavy Snow"
)

const (
	extremeHeatThreshold = 35.0 // °C, exclusive
	freezingThreshold    = 0.0  // °C, exclusive
)

// severeKeywords is scanned in order, so labels keep a stable order.
var severeKeywords = []struct {
	keyword string
	label   string
}{
	{"thunderstorm", ConditionThunder},
	{"tornado", ConditionTornado},
	{"hurricane", ConditionHurricane},
	{"snow", ConditionHeavySnow},
}

// Conditions is the ordered set of severe labels raised for one observation.
type Conditions []string

// Add appends label unless it is already present.
func (c Conditions) Add(label string) Conditions {
	for _, existing := range c {
		if existing == label {
			return c
		}
	}
	return append(c, label)
}

// Empty reports whether no severe condition was raised.
func (c Conditions) Empty() bool { return len(c) == 0 }

func (c Conditions) String() string { return strings.Join(c, ", ") }

// Classify returns the severe conditions present in obs.
func Classify(obs *Observation) Conditions {
	var conds Conditions
	if obs == nil {
		return conds
	}

	if t, ok := numberValue(obs.Temperature); ok {
		if t > extremeHeatThreshold {
			conds = conds.Add(ConditionExtremeHeat)
		} else if t < freezingThreshold {
			conds = conds.Add(ConditionFreezing)
		}
	}

	condition := strings.ToLower(obs.Condition)
	description := strings.ToLower(textValue(obs.Description))
	for _, kw := range severeKeywords {
		if strings.Contains(condition, kw.keyword) || strings.Contains(description, kw.keyword) {
			conds = conds.Add(kw.label)
		}
	}
	return conds
}

// FormatAlert renders an alert for obs. It returns false when the observation
// is missing or nothing severe was found.
func FormatAlert(obs *Observation) (string, bool) {
	conds := Classify(obs)
	if conds.Empty() {
		return "", false
	}

	return fmt.Sprintf(`
Severe Weather Alert
Conditions: %s
Location: %s
Temperature: %s°C
Description: %s
Humidity: %s%%
Wind Speed: %s m/s
`,
		conds,
		orDefault(obs.Location, "Unknown"),
		formatNumber(obs.Temperature),
		orDefault(obs.Description, "No description available"),
		formatNumber(obs.Humidity),
		formatNumber(obs.WindSpeed),
	), true
}

// FormatActiveAlert renders a provider-issued alert. No classification is
// applied; the provider has already decided it is active.
func FormatActiveAlert(a ActiveAlert) string {
	return fmt.Sprintf(`
Event: %s
Area: %s
Severity: %s
Description: %s
Instructions: %s
`,
		orDefault(a.Event, "Unknown"),
		orDefault(a.Area, "Unknown"),
		orDefault(a.Severity, "Unknown"),
		orDefault(a.Description, "No description available"),
		orDefault(a.Instruction, "No specific instructions provided"),
	)
}
