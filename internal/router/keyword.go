package router

import (
	"regexp"
	"strings"

	"github.com/casaflow/casaflow/internal/domain"
)

// Classification is the output of one classifier tier.
type Classification struct {
	Intent      domain.Intent
	Confidence  float64
	TargetAgent string
	Reason      string
}

// Keyword-tier confidence scores. Fixed per rule; anything below
// llmFallbackThreshold hands the utterance to the LLM tier.
const (
	confCreate  = 0.95
	confList    = 0.92
	confDelete  = 0.90
	confSwitch  = 0.88
	confNoMatch = 0.50
)

// addressRe matches a street number followed by a street name and a street
// type, in English or Spanish ("123 Main St", "45 Calle Sol").
var addressRe = regexp.MustCompile(`(?i)\b\d{1,6}\s+(?:[a-záéíóúñü]+\.?\s+){0,4}(?:st|street|ave|avenue|rd|road|dr|drive|ln|lane|blvd|boulevard|ct|court|hwy|calle|avenida|camino|carretera|lote|lot)\b`)

var createVerbs = []string{
	"add", "create", "new property", "register", "bought",
	"agrega", "añade", "crea", "registra", "nueva propiedad", "compramos",
}

var listIndicators = []string{
	"list", "show me", "show all", "my properties", "all properties", "which properties",
	"lista", "muestra", "muéstrame", "mis propiedades", "todas las propiedades", "cuales propiedades", "cuáles propiedades",
}

var deleteVerbs = []string{
	"delete", "remove", "drop",
	"elimina", "borra", "quita",
}

var propertyNouns = []string{
	"property", "house", "home", "mobile home", "trailer",
	"propiedad", "casa", "traila", "tráiler",
}

var documentNouns = []string{
	"document", "file", "photo", "contract", "pdf",
	"documento", "archivo", "foto", "contrato",
}

var switchIndicators = []string{
	"switch to", "change to", "work on", "go back to", "other property",
	"cambia a", "cambiar a", "trabajemos en", "volvamos a", "otra propiedad",
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ClassifyKeywords runs the prioritized tier-1 pattern checks. It always
// returns a usable classification; an unmatched utterance falls through to
// general conversation at exactly confNoMatch, which is below the LLM
// fallback threshold.
func ClassifyKeywords(text string) Classification {
	lower := strings.ToLower(strings.TrimSpace(text))

	if addressRe.MatchString(lower) && containsAny(lower, createVerbs) {
		return Classification{
			Intent:      domain.IntentPropertyCreate,
			Confidence:  confCreate,
			TargetAgent: domain.AgentProperty,
			Reason:      "address pattern with creation verb",
		}
	}

	if containsAny(lower, listIndicators) {
		return Classification{
			Intent:      domain.IntentPropertyList,
			Confidence:  confList,
			TargetAgent: domain.AgentProperty,
			Reason:      "list indicator",
		}
	}

	// Delete requires the verb up front and a property noun, and must not
	// mention a document: "elimina el documento" is a document operation.
	if startsWithAny(lower, deleteVerbs) && containsAny(lower, propertyNouns) && !containsAny(lower, documentNouns) {
		return Classification{
			Intent:      domain.IntentPropertyDelete,
			Confidence:  confDelete,
			TargetAgent: domain.AgentProperty,
			Reason:      "delete verb with property noun",
		}
	}

	if containsAny(lower, switchIndicators) {
		return Classification{
			Intent:      domain.IntentPropertySwitch,
			Confidence:  confSwitch,
			TargetAgent: domain.AgentProperty,
			Reason:      "switch indicator",
		}
	}

	return Classification{
		Intent:      domain.IntentGeneralConversation,
		Confidence:  confNoMatch,
		TargetAgent: domain.AgentMain,
		Reason:      "no keyword match",
	}
}

func startsWithAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
