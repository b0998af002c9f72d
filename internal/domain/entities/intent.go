package entities

// Intent is the classified purpose of a query, drawn from a closed set.
type Intent string

const (
	IntentComparison Intent = "comparison"
	IntentRanking    Intent = "ranking"
	IntentTrend      Intent = "trend"
	IntentLookup     Intent = "lookup"
	IntentDefinition Intent = "definition"
	IntentGreeting   Intent = "greeting"
	IntentFarewell   Intent = "farewell"
	IntentUnknown    Intent = "unknown"
)

// intentPriority orders intents from most to least specific. Ties in rule
// scoring are broken in this order.
var intentPriority = map[Intent]int{
	IntentComparison: 7,
	IntentRanking:    6,
	IntentTrend:      5,
	IntentLookup:     4,
	IntentDefinition: 3,
	IntentGreeting:   2,
	IntentFarewell:   1,
	IntentUnknown:    0,
}

// Priority returns the tie-break rank of the intent, higher is more specific.
func (i Intent) Priority() int {
	return intentPriority[i]
}

// IsConversational reports whether the intent is answered from fixed
// templates without data retrieval.
func (i Intent) IsConversational() bool {
	return i == IntentGreeting || i == IntentFarewell
}
