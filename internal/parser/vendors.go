package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/askledger/askledger/internal/domain"
)

// knownCompanies are vendor names recognized anywhere in a question,
// case-insensitively.
var knownCompanies = []string{
	"microsoft", "amazon", "google", "apple", "ibm", "oracle",
	"adobe", "salesforce", "netflix", "spotify", "uber", "airbnb",
	"tesla", "meta", "twitter", "linkedin", "slack", "zoom",
	"dropbox", "github", "reliance",
}

// stopWords are capitalized question words that are never vendor names.
var stopWords = map[string]struct{}{
	"how": {}, "many": {}, "what": {}, "from": {}, "to": {}, "are": {}, "the": {},
}

var titler = cases.Title(language.English)

// vendorCandidates extracts potential vendor names from a question:
// known company names first, then capitalized tokens (length > 2, not a
// stop word) from the original-cased text. Callers use the first
// candidate, so ordering matters.
func vendorCandidates(question string) []string {
	q := strings.ToLower(question)

	var found []string
	for _, company := range knownCompanies {
		if strings.Contains(q, company) {
			found = append(found, titler.String(company))
		}
	}

	for _, token := range strings.Fields(question) {
		word := strings.TrimFunc(token, unicode.IsPunct)
		if len(word) <= 2 {
			continue
		}
		runes := []rune(word)
		if !unicode.IsUpper(runes[0]) {
			continue
		}
		if _, stop := stopWords[strings.ToLower(word)]; stop {
			continue
		}
		found = append(found, word)
	}

	return found
}

// detectKnownVendor returns the first dataset vendor whose name appears
// in the question, case-insensitively.
func detectKnownVendor(q string, knownVendors []string) (string, bool) {
	for _, vendor := range knownVendors {
		if vendor == "" {
			continue
		}
		if strings.Contains(q, strings.ToLower(vendor)) {
			return vendor, true
		}
	}
	return "", false
}

// vendorFilter builds the canonical vendor filter clause.
func vendorFilter(vendor string) domain.Filter {
	return domain.NewTextFilter("vendor", domain.OpEquals, vendor)
}
