package matching

import (
	"math"
	"strings"
)

// GenericTagWeight is the fixed weight for tags in the generic set.
// Generic tags appear across many unrelated FAQs, so frequency alone
// would still leave them too influential in small FAQ sets.
const GenericTagWeight = 0.2

// genericTags are schedule, appointment, contact, support, and
// info-type words that show up as triggers on many unrelated FAQs.
var genericTags = map[string]bool{
	"hours":       true,
	"open":        true,
	"time":        true,
	"schedule":    true,
	"appointment": true,
	"booking":     true,
	"contact":     true,
	"support":     true,
	"help":        true,
	"info":        true,
	"information": true,
	"question":    true,
	"questions":   true,
	"service":     true,
	"services":    true,
}

// ComputeTagWeights builds the inverse-frequency weight table for a FAQ
// set's explicit triggers. Question-text keywords are not counted here;
// only author-supplied triggers contribute to frequency. Generic tags
// get the fixed GenericTagWeight regardless of frequency, every other
// tag gets 1/frequency rounded to two decimals, so a tag unique to one
// FAQ weighs 1.0 and a tag shared by ten FAQs weighs 0.1.
//
// The table is rebuilt from the live FAQ set on every matching call.
// FAQ sets are small (tens of entries), and recomputing beats cache
// invalidation when sets change between requests.
func ComputeTagWeights(faqs []*FAQ) map[string]float64 {
	freq := make(map[string]int)
	for _, faq := range faqs {
		for _, trigger := range faq.Triggers {
			tag := strings.ToLower(trigger)
			if tag == "" {
				continue
			}
			freq[tag]++
		}
	}

	weights := make(map[string]float64, len(freq))
	for tag, count := range freq {
		if genericTags[tag] {
			weights[tag] = GenericTagWeight
			continue
		}
		weights[tag] = round2(1.0 / float64(count))
	}
	return weights
}

// weightFor looks up a tag's weight. Tags outside the table are
// question-derived keywords that no FAQ uses as a trigger: generic ones
// still get the damped weight, the rest count as unique (1.0).
func weightFor(tag string, weights map[string]float64) float64 {
	if w, ok := weights[tag]; ok {
		return w
	}
	if genericTags[tag] {
		return GenericTagWeight
	}
	return 1.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
