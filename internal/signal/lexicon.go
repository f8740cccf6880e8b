package signal

import "strings"

// factor is one weighted boolean indicator of sunk-cost reasoning.
type factor struct {
	name     string
	weight   float64
	keywords []string
}

// Factor names.
const (
	FactorPast       = "past"
	FactorTimeEffort = "time_effort"
	FactorObligation = "obligation"
	FactorWaste      = "waste"
)

// decisiveFloor is the minimum signal when waste and obligation co-occur.
const decisiveFloor = 0.85

// lexicon holds the fixed keyword tables. It is built once and never mutated.
type lexicon struct {
	factors       []factor
	neutralizers  []string
	questionFrame []string
	pastCues      []string
	extractPast   []string
}

var lex = lexicon{
	factors: []factor{
		{FactorPast, 0.30, []string{"already", "spent", "put in", "invested", "after all", "so much"}},
		{FactorTimeEffort, 0.20, []string{"month", "year", "time", "effort", "work", "energy", "money"}},
		{FactorObligation, 0.35, []string{
			"so i should", "so i must", "so i have to",
			"therefore i should", "can't quit", "can't stop",
		}},
		{FactorWaste, 0.40, []string{"waste", "wasted", "for nothing", "thrown away"}},
	},
	neutralizers:  []string{"if i ignore", "zero prior", "without the time"},
	questionFrame: []string{"am i", "is my desire"},
	pastCues:      []string{"already", "invested"},
	extractPast:   []string{"already", "spent", "invested", "put in", "years", "months"},
}

// normalize lower-cases text and folds curly apostrophes to ASCII.
func normalize(text string) string {
	return strings.ToLower(strings.NewReplacer("’", "'", "‘", "'").Replace(text))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
