package food

import (
	"regexp"
	"strconv"
	"strings"
)

// separatorPattern splits an utterance on Indonesian connector words and
// common list punctuation. Connector words only match as whole words.
var separatorPattern = regexp.MustCompile(`(?i)\s+dan\s+|\s+sama\s+|\s+lalu\s+|,|\+|&`)

// numberPattern finds the first numeral in a segment, decimal comma
// included
var numberPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)`)

// numberWords maps Indonesian quantity words to numeric values
var numberWords = map[string]float64{
	"setengah":   0.5,
	"seperempat": 0.25,
	"sepertiga":  0.33,
	"satu":       1,
	"dua":        2,
	"tiga":       3,
	"empat":      4,
	"lima":       5,
}

// knownUnits is the set of units the splitter recognizes after a quantity
var knownUnits = map[string]bool{
	"porsi":   true,
	"piring":  true,
	"mangkuk": true,
	"mangkok": true,
	"potong":  true,
	"bungkus": true,
	"sendok":  true,
	"butir":   true,
	"gelas":   true,
	"buah":    true,
	"slice":   true,
	"gram":    true,
	"gr":      true,
	"g":       true,
}

// SplitMentions breaks a free-text utterance into independently resolvable
// mentions. A non-empty input always yields at least one mention: when no
// segment survives splitting, the whole trimmed input becomes a single
// mention with default quantity.
func SplitMentions(text string, defaultUnit string) []Mention {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	segments := separatorPattern.Split(trimmed, -1)
	mentions := make([]Mention, 0, len(segments))

	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		mentions = append(mentions, parseSegment(segment, defaultUnit))
	}

	if len(mentions) == 0 {
		mentions = append(mentions, parseSegment(trimmed, defaultUnit))
	}

	return mentions
}

// parseSegment extracts quantity, unit and food name from one segment.
// Confidence is a parsing heuristic and stays at 0.5 for this rule-based
// splitter.
func parseSegment(segment string, defaultUnit string) Mention {
	quantity := 1.0
	unit := defaultUnit
	name := segment

	if loc := numberPattern.FindStringIndex(segment); loc != nil {
		numText := strings.ReplaceAll(segment[loc[0]:loc[1]], ",", ".")
		if parsed, err := strconv.ParseFloat(numText, 64); err == nil && parsed > 0 {
			quantity = parsed
		}
		name = strings.TrimSpace(segment[:loc[0]] + " " + segment[loc[1]:])
	} else {
		lowered := strings.ToLower(segment)
		for word, value := range numberWords {
			if strings.HasPrefix(lowered, word+" ") {
				quantity = value
				name = strings.TrimSpace(segment[len(word):])
				break
			}
		}
	}

	// A unit word right after the quantity belongs to the portion, not
	// the food name
	fields := strings.Fields(name)
	if len(fields) > 1 && knownUnits[strings.ToLower(fields[0])] {
		unit = strings.ToLower(fields[0])
		name = strings.Join(fields[1:], " ")
	}

	if name == "" {
		name = segment
	}

	return Mention{
		RawText:    segment,
		Name:       name,
		Quantity:   quantity,
		Unit:       unit,
		Confidence: 0.5,
	}
}
