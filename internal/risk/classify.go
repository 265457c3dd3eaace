// Package risk maps numeric fraud risk scores onto the platform's three-way
// verdict. It is the single place the score thresholds live: badges, filters,
// history rows and admin statistics all call Classify instead of re-deriving
// cutoffs, so changing a threshold changes behavior everywhere at once.
package risk

// Category is the internal three-way tag used for filtering and aggregation.
type Category string

// Categories, one per verdict band.
const (
	CategoryFake       Category = "fake"
	CategoryGenuine    Category = "genuine"
	CategorySuspicious Category = "suspicious"
)

// Level is the coarse risk bucket used by the admin risk distribution chart.
type Level string

// Risk levels, same partition as Category.
const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Verdict strings shown to users.
const (
	VerdictFake       = "Fake Job"
	VerdictGenuine    = "Genuine Job"
	VerdictSuspicious = "Suspicious"
)

// Result is the full classification of a risk score.
type Result struct {
	Verdict  string   `json:"verdict"`
	Category Category `json:"category"`
	Level    Level    `json:"level"`
}

// Classify maps a 0-100 risk score to its verdict, category and level.
// Scores of 70 and above are fake, 40 and below genuine, the open interval
// between is suspicious. Inputs outside [0,100] are clamped first, so the
// function is total over all real inputs.
func Classify(riskRate float64) Result {
	r := Clamp(riskRate)
	switch {
	case r >= 70:
		return Result{Verdict: VerdictFake, Category: CategoryFake, Level: LevelHigh}
	case r <= 40:
		return Result{Verdict: VerdictGenuine, Category: CategoryGenuine, Level: LevelLow}
	default:
		return Result{Verdict: VerdictSuspicious, Category: CategorySuspicious, Level: LevelMedium}
	}
}

// Clamp restricts a risk score to the [0,100] range.
func Clamp(riskRate float64) float64 {
	if riskRate < 0 {
		return 0
	}
	if riskRate > 100 {
		return 100
	}
	return riskRate
}

// ValidCategory reports whether s names one of the three categories.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryFake, CategoryGenuine, CategorySuspicious:
		return true
	}
	return false
}
