package nlp

import "strings"

// orthography folds Arabic spelling variants: diacritics are stripped, alef
// forms collapse to bare alef, ta marbuta to ha, and ya to alef maqsura.
var orthography = strings.NewReplacer(
	"ً", "", // fathatan
	"ٌ", "", // dammatan
	"ٍ", "", // kasratan
	"َ", "", // fatha
	"ُ", "", // damma
	"ِ", "", // kasra
	"ّ", "", // shadda
	"ْ", "", // sukun
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ة", "ه",
	"ي", "ى",
)

// Normalizer canonicalizes raw queries for retrieval. Every step is total
// and side-effect-free; the output is always a usable query string.
type Normalizer struct {
	rules *RuleSet
}

// NewNormalizer creates a normalizer over the given rule set.
func NewNormalizer(rules *RuleSet) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize runs the full canonicalization chain: dialect mapping, synonym
// expansion, then orthographic folding.
func (n *Normalizer) Normalize(query string) string {
	return FoldOrthography(n.ExpandSynonyms(n.MapDialect(query)))
}

// MapDialect replaces dialect tokens with their standard-register
// equivalents, appending the original dialect token so both forms stay
// searchable. A word mapped by several dialects keeps the last mapping in
// table order.
func (n *Normalizer) MapDialect(query string) string {
	mapped := query
	for _, m := range n.rules.DialectMappings {
		if !strings.Contains(mapped, m.Dialect) {
			continue
		}
		mapped = strings.ReplaceAll(mapped, m.Dialect, m.Standard)
		mapped += " " + m.Dialect
	}
	return mapped
}

// ExpandSynonyms appends the synonym set of every base term found in the
// query, broadening lexical recall.
func (n *Normalizer) ExpandSynonyms(query string) string {
	expanded := strings.Join(strings.Fields(query), " ")
	for _, g := range n.rules.Synonyms {
		if strings.Contains(expanded, g.Base) {
			expanded += " " + strings.Join(g.Synonyms, " ")
		}
	}
	return expanded
}

// FoldOrthography strips diacritics and collapses letter variants to reduce
// spelling-variant mismatches.
func FoldOrthography(query string) string {
	return orthography.Replace(strings.Join(strings.Fields(query), " "))
}
