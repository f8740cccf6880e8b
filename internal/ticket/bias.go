package ticket

import (
	"strings"

	"github.com/clearframe/clearframe/internal/types"
)

// Bias category labels.
const (
	BiasSunkCost     = "SUNK_COST"
	BiasConfirmation = "CONFIRMATION_BIAS"
	BiasAnchoring    = "ANCHORING"
	BiasStatusQuo    = "STATUS_QUO"
)

// legacyStrength is granted to ids carrying a known legacy prefix when no
// keyword matched.
const legacyStrength = 0.5

// biasCategory is one named category with its keyword list.
type biasCategory struct {
	name     string
	keywords []string
}

// categories is in declaration order; ties resolve to the earlier entry.
var categories = []biasCategory{
	{BiasSunkCost, []string{
		"already invested", "already spent", "sunk", "too far in",
		"can't quit", "wasted", "put in so much", "after all this",
	}},
	{BiasConfirmation, []string{
		"proves i was right", "confirms", "as i expected", "ignore the",
		"only read", "agrees with me",
	}},
	{BiasAnchoring, []string{
		"original price", "first offer", "initial estimate", "started at",
		"anchor", "compared to the first",
	}},
	{BiasStatusQuo, []string{
		"always done it", "keep things", "no need to change", "the way it is",
		"stick with", "default option",
	}},
}

// legacyPrefixes maps upper-cased id prefixes to categories.
var legacyPrefixes = []struct {
	prefix   string
	category string
}{
	{"SC-", BiasSunkCost},
	{"CB-", BiasConfirmation},
}

// ClassifyBias elects the bias category whose keyword list matches the largest
// fraction of its keywords in body.
func ClassifyBias(body, id string) (string, float64) {
	text := strings.ToLower(strings.ReplaceAll(body, "’", "'"))

	best, bestStrength := types.UnknownBias, 0.0
	for _, cat := range categories {
		matched := 0
		for _, kw := range cat.keywords {
			if strings.Contains(text, kw) {
				matched++
			}
		}
		strength := float64(matched) / float64(len(cat.keywords))
		if strength > bestStrength {
			best, bestStrength = cat.name, strength
		}
	}
	if bestStrength > 0 {
		return best, bestStrength
	}

	upper := strings.ToUpper(strings.TrimSpace(id))
	for _, lp := range legacyPrefixes {
		if strings.HasPrefix(upper, lp.prefix) {
			return lp.category, legacyStrength
		}
	}
	return types.UnknownBias, 0
}
