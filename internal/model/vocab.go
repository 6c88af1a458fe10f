package model

// Unknown is the fallback value for both routing vocabularies, used when the
// routing collaborator fails or returns a value outside the vocabulary.
const Unknown = "unknown"

// SourceTypes is the controlled vocabulary of source types a sub-query can be
// routed to. Routing replies are validated against this list.
var SourceTypes = []string{
	"Coaching blogs",
	"training websites",
	"expert-authored pages",
	"E-commerce sites",
	"product review sites",
	"affiliate blogs",
	"Instructional platforms",
	"fitness apps",
	"YouTube channels",
	"Knowledge bases",
	"encyclopedias",
	"government or academic sources",
	"financial data APIs",
	"bank product pages",
	"personal finance editorial sites",
}

// ModalityTypes is the controlled vocabulary of content modalities. Each
// routed sub-query carries exactly one.
var ModalityTypes = []string{
	"Long-form text",
	"structured schedules",
	"tables",
	"Listicles",
	"bullet lists",
	"product comparison tables",
	"Video (with transcripts)",
	"step-by-step guides",
	"Concise explanatory text",
	"structured definitions",
}

var (
	sourceTypeSet = toSet(SourceTypes)
	modalitySet   = toSet(ModalityTypes)
)

func toSet(values []string) map[string]bool {
	s := make(map[string]bool, len(values))
	for _, v := range values {
		s[v] = true
	}
	return s
}

// ValidSourceType reports whether s is in the source-type vocabulary or is
// the fallback value.
func ValidSourceType(s string) bool {
	return s == Unknown || sourceTypeSet[s]
}

// ValidModality reports whether m is in the modality vocabulary or is the
// fallback value.
func ValidModality(m string) bool {
	return m == Unknown || modalitySet[m]
}
