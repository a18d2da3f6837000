package qa

import (
	"strings"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// Currency codes in the order their patterns are unioned for an unknown region.
var currencyOrder = []string{"USD", "CAD", "GBP", "INR", "EUR"}

var currencyPatterns = map[string][]string{
	"USD": {`\$[\d,]+(?:\.\d{2})?`, `USD\s*[\d,]+`, `dollars?`},
	"CAD": {`CAD\s*[\d,]+`, `C\$[\d,]+`, `Canadian\s+dollars?`},
	"GBP": {`£[\d,]+(?:\.\d{2})?`, `GBP\s*[\d,]+`, `pounds?`},
	"INR": {`₹[\d,]+(?:\.\d{2})?`, `\bRs\.?\s*[\d,]+`, `INR\s*[\d,]+`, `rupees?`, `[\d,]+\s*(?:crores?|lakhs?)`},
	"EUR": {`€[\d,]+(?:\.\d{2})?`, `EUR\s*[\d,]+`, `euros?`},
}

// Company and people patterns rely on capitalisation and stay case-sensitive.
var companyPatterns = []string{
	`\b[A-Z][a-zA-Z\s&]+(?:Inc|LLC|Corp|Corporation|Company|Ltd|Limited|Pvt\.?\s*Ltd\.?|LLP)\b`,
	`\b[A-Z][a-zA-Z\s&]+(?:GmbH|AG|SA|SAS|BV|AB|AS)\b`,
}

var peoplePatterns = []string{
	`\b(?:Mr\.?|Mrs\.?|Ms\.?|Dr\.?)\s+[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*\b`,
	`\b[A-Z][a-zA-Z]+\s+[A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*\b`,
}

// Question words that widen the party search to named individuals.
var personKeywords = []string{"person", "individual", "signatory", "representative"}

var datePatterns = []string{
	`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
	`\b\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s*,?\s*\d{4}\b`,
	`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:st|nd|rd|th)?\s*,?\s*\d{4}\b`,
}

var jurisdictionPatterns = []string{
	`courts?\s+(?:of|in|at)\s+([A-Za-z\s]+)(?:\s+shall\s+have\s+jurisdiction|jurisdiction)`,
	`governed\s+by\s+(?:the\s+)?laws?\s+of\s+([A-Za-z\s]+)`,
	`subject\s+to\s+(?:the\s+)?jurisdiction\s+of\s+([A-Za-z\s]+)`,
	`exclusive\s+jurisdiction\s+of\s+([A-Za-z\s]+)`,
	`courts?\s+of\s+([A-Za-z\s]+)\s+shall\s+have\s+jurisdiction`,
}

var terminationPatterns = []string{
	`(?:terminate|termination).*?(?:upon|after|within)\s+(\d+\s+(?:days?|months?|years?))`,
	`(?:notice\s+of\s+)?termination.*?(\d+\s+(?:days?|months?|years?))`,
	`either\s+party\s+may\s+terminate.*?(\d+\s+(?:days?|months?|years?))`,
	`contract\s+(?:shall\s+)?terminate.*?(\d+\s+(?:days?|months?|years?))`,
}

var paymentPatterns = []string{
	`payment.*?(?:due|payable).*?(\d+\s+(?:days?|months?))`,
	`invoice.*?(?:due|payable).*?(\d+\s+(?:days?|months?))`,
	`(?:net\s+)?(\d+)\s+days?`,
	`payment\s+terms?.*?(\d+\s+(?:days?|months?))`,
}

// Route keywords are substrings of the lower-cased question, so "payable"
// reaches payment through "pay" and "terminating" reaches date through "term".
var routeKeywords = []struct {
	intent   domain.QAIntent
	keywords []string
}{
	{domain.IntentMoney, []string{"value", "amount", "price", "cost", "money", "payment"}},
	{domain.IntentParty, []string{"party", "parties", "who", "company", "organization"}},
	{domain.IntentDate, []string{"date", "when", "expire", "expiry", "term", "duration"}},
	{domain.IntentJurisdiction, []string{"jurisdiction", "court", "law", "governing", "legal"}},
	{domain.IntentTermination, []string{"terminate", "termination", "end", "cancel"}},
	{domain.IntentPayment, []string{"payment", "pay", "invoice", "billing"}},
}

var baseSuggestions = []string{
	"What is the contract value?",
	"Who are the parties involved?",
	"When does this contract expire?",
	"What are the payment terms?",
	"What jurisdiction governs this contract?",
	"Are there any termination clauses?",
}

// region is what a jurisdiction preference resolves to.
type region struct {
	currency    string
	suggestions []string
}

var (
	regionIndia = region{currency: "INR", suggestions: []string{
		"What are the GST/PAN numbers mentioned?",
		"Which Indian courts have jurisdiction?",
		"Are there any FEMA compliance requirements?",
	}}
	regionUSA = region{currency: "USD", suggestions: []string{
		"What US state law governs this contract?",
		"Are there any federal compliance requirements?",
	}}
	regionUK = region{currency: "GBP", suggestions: []string{
		"Which UK courts have jurisdiction?",
		"Are there any Companies House requirements?",
	}}
	regionCanada = region{currency: "CAD"}
	regionEurope = region{currency: "EUR"}
)

var regions = map[string]region{
	"india":          regionIndia,
	"inr":            regionIndia,
	"usa":            regionUSA,
	"us":             regionUSA,
	"united states":  regionUSA,
	"usd":            regionUSA,
	"uk":             regionUK,
	"united kingdom": regionUK,
	"gbp":            regionUK,
	"canada":         regionCanada,
	"cad":            regionCanada,
	"eu":             regionEurope,
	"europe":         regionEurope,
	"eur":            regionEurope,
}

// lookupRegion resolves a preference such as "India" or "USD". Unknown values,
// including "International", report false.
func lookupRegion(preference string) (region, bool) {
	r, ok := regions[strings.ToLower(strings.TrimSpace(preference))]
	return r, ok
}
