package mastery

// TotalScore is the score scale that per-word and per-exercise credit is
// carved out of.
const TotalScore = 100.0

// Params defines the configurable thresholds of the mastery calculation.
type Params struct {
	// Colour bands, as a fraction of the maximum attainable parent score
	GreenThreshold  float64
	YellowThreshold float64
	OrangeThreshold float64

	// Fraction of the per-word maximum a word needs to count as mastered
	MasteredWordRatio float64

	// Number of words listed in the weakest and strongest sections of a report
	ReportSize int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	GreenThreshold    float64
	YellowThreshold   float64
	OrangeThreshold   float64
	MasteredWordRatio float64
	ReportSize        int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		GreenThreshold:    0.90,
		YellowThreshold:   0.70,
		OrangeThreshold:   0.40,
		MasteredWordRatio: 0.90,
		ReportSize:        5,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.GreenThreshold > 0 {
		params.GreenThreshold = config.GreenThreshold
	}
	if config.YellowThreshold > 0 {
		params.YellowThreshold = config.YellowThreshold
	}
	if config.OrangeThreshold > 0 {
		params.OrangeThreshold = config.OrangeThreshold
	}
	if config.MasteredWordRatio > 0 {
		params.MasteredWordRatio = config.MasteredWordRatio
	}
	if config.ReportSize > 0 {
		params.ReportSize = config.ReportSize
	}

	return params
}
