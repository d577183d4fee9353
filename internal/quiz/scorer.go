package quiz

import (
	"math"

	"iq-quiz-service/internal/domain"
)

// IQ scale: linear in the raw score, clamped to a fixed interval.
// 0 correct maps to the floor, 10 correct to the ceiling.
const (
	iqBase       = 70
	iqPerCorrect = 9
	iqFloor      = 70
	iqCeiling    = 160
)

// CelebrityBands covers [iqFloor, iqCeiling] contiguously; the final band is
// unbounded (MaxIQ == 0) and catches everything above.
var CelebrityBands = []domain.CelebrityBand{
	{Label: "Forrest Gump", MinIQ: 70, MaxIQ: 85, Description: "fictional character with a kind heart and simple wisdom"},
	{Label: "Average Person", MinIQ: 85, MaxIQ: 100, Description: "represents the typical intelligence of most people"},
	{Label: "Tom Cruise", MinIQ: 100, MaxIQ: 115, Description: "action star with sharp practical smarts"},
	{Label: "Natalie Portman", MinIQ: 115, MaxIQ: 130, Description: "Harvard graduate and published researcher"},
	{Label: "Nikola Tesla", MinIQ: 130, MaxIQ: 145, Description: "visionary inventor ahead of his time"},
	{Label: "Stephen Hawking", MinIQ: 145, MaxIQ: 160, Description: "theoretical physicist who reshaped cosmology"},
	{Label: "Terence Tao", MinIQ: 160, Description: "mathematician regarded as one of the greatest minds alive"},
}

// IQEstimate converts a raw score to the clamped IQ scale. The result is
// rounded before clamping and always an integer.
func IQEstimate(rawScore int) int {
	iq := int(math.Round(iqBase + iqPerCorrect*float64(rawScore)))
	if iq < iqFloor {
		return iqFloor
	}
	if iq > iqCeiling {
		return iqCeiling
	}
	return iq
}

// MatchBand finds the band containing iq: first band whose upper bound is
// strictly greater wins, the unbounded final band catches the rest.
func MatchBand(iq int) domain.CelebrityBand {
	for _, band := range CelebrityBands {
		if band.MaxIQ > 0 && iq < band.MaxIQ {
			return band
		}
	}
	return CelebrityBands[len(CelebrityBands)-1]
}

// PerformanceTier maps a correctness percentage to its label. Tiers are
// contiguous and monotonic.
func PerformanceTier(percentage int) string {
	switch {
	case percentage >= 90:
		return "Exceptional"
	case percentage >= 80:
		return "Superior"
	case percentage >= 70:
		return "Above Average"
	case percentage >= 60:
		return "Average"
	case percentage >= 50:
		return "Below Average"
	case percentage >= 30:
		return "Poor"
	default:
		return "Extremely Poor"
	}
}

// Score derives the full test result from an answer log. Pure and
// deterministic; an empty log is a caller bug and fails with
// ErrEmptyAnswerLog.
func Score(log domain.AnswerLog) (domain.TestResult, error) {
	if len(log) == 0 {
		return domain.TestResult{}, domain.ErrEmptyAnswerLog
	}
	raw := log.CorrectCount()
	iq := IQEstimate(raw)
	percentage := int(math.Round(float64(raw) / float64(len(log)) * 100))
	return domain.TestResult{
		RawScore:       raw,
		TotalQuestions: len(log),
		IQEstimate:     iq,
		Band:           MatchBand(iq),
		Percentage:     percentage,
		Tier:           PerformanceTier(percentage),
	}, nil
}
