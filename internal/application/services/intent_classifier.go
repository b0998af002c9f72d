package services

import (
	"strings"

	"github.com/ingres-rag/groundwater-backend/internal/domain/entities"
)

// IntentClassifier assigns exactly one intent to every query using lexical
// cues plus the extracted entities. Classification is deterministic and
// total: identical input always yields the identical tag, and no input is
// left untagged.
type IntentClassifier struct {
	cues map[entities.Intent][]string
}

// NewIntentClassifier creates a classifier with the default cue table.
func NewIntentClassifier() *IntentClassifier {
	return &IntentClassifier{cues: defaultIntentCues()}
}

// Classify scores every intent's cues against the query and returns the
// winner. Ties break toward the more specific intent in the fixed priority
// order comparison > ranking > trend > lookup > definition.
func (c *IntentClassifier) Classify(text string, ents entities.ExtractedEntities) entities.Intent {
	lower := strings.ToLower(text)
	scores := make(map[entities.Intent]int)

	for intent, cues := range c.cues {
		for _, cue := range cues {
			if matchCue(lower, cue) {
				scores[intent]++
			}
		}
	}

	// "what is"/"what are" asks for a definition only when the query names
	// neither a region nor a year; with entities attached it is a lookup.
	if matchCue(lower, "what is") || matchCue(lower, "what are") {
		if len(ents.Regions) == 0 && len(ents.Years) == 0 {
			scores[entities.IntentDefinition]++
		} else {
			scores[entities.IntentLookup]++
		}
	}

	// Entity shape reinforces data intents.
	if len(ents.Regions) > 0 && len(ents.Metrics) > 0 {
		scores[entities.IntentLookup]++
	}
	for _, yr := range ents.Years {
		if yr.To > yr.From {
			scores[entities.IntentTrend]++
			break
		}
	}
	if len(ents.CompareTargets) >= 2 {
		scores[entities.IntentComparison]++
	}

	best := entities.IntentUnknown
	bestScore := 0
	for intent, score := range scores {
		if score > bestScore || (score == bestScore && score > 0 && intent.Priority() > best.Priority()) {
			best = intent
			bestScore = score
		}
	}
	return best
}

// matchCue matches single-word cues at token boundaries and multi-word cues
// as substrings, so "hi" does not fire inside "which".
func matchCue(lower, cue string) bool {
	if strings.ContainsRune(cue, ' ') {
		return strings.Contains(lower, cue)
	}
	return indexWord(lower, cue) >= 0
}

func defaultIntentCues() map[entities.Intent][]string {
	return map[entities.Intent][]string{
		entities.IntentComparison: {
			"compare", "versus", "vs", "difference between", "compared to",
		},
		entities.IntentRanking: {
			"highest", "lowest", "which state", "which region", "top", "most", "least", "best", "worst", "rank",
		},
		entities.IntentTrend: {
			"trend", "over time", "over the years", "historical", "history", "changed", "change in",
		},
		entities.IntentLookup: {
			"how much", "show me", "give me", "tell me", "data for", "statistics for", "stats for", "value of",
		},
		entities.IntentDefinition: {
			"how to", "how do", "how does", "explain", "meaning of", "definition", "what does", "guide", "tutorial", "help",
		},
		entities.IntentGreeting: {
			"hi", "hello", "hey", "namaste", "good morning", "good evening", "greetings",
		},
		entities.IntentFarewell: {
			"bye", "goodbye", "farewell", "see you", "take care",
		},
	}
}
