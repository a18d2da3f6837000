package entities

// Pattern tables per entity label. All patterns are matched case-insensitively.
var defaultPatterns = []labelPatterns{
	{label: "DATES", patterns: []string{
		`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`,
		`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
		`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`,
		`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`,
	}},
	{label: "MONEY", patterns: []string{
		`(?:\$|USD|EUR|GBP|CAD)\s*[\d,]+(?:\.\d{2})?(?:\s*(?:million|billion|thousand|M|B|K))?`,
		`\b\d+(?:,\d{3})*(?:\.\d{2})?\s*(?:dollars?|euros?|pounds?|USD|EUR|GBP|CAD)\b`,
		`\b(?:million|billion|thousand)\s+(?:dollars?|euros?|pounds?)\b`,
	}},
	{label: "LEGAL_CITATIONS", patterns: []string{
		`\b\d+\s+[A-Z][a-z]+\.?\s+\d+\b`,
		`\b[A-Z][a-z]+\.?\s+v\.?\s+[A-Z][a-z]+\b`,
		`\b\d+\s+U\.?S\.?C\.?\s+§?\s*\d+\b`,
		`\b\d+\s+C\.?F\.?R\.?\s+§?\s*\d+\b`,
	}},
	{label: "CONTRACT_TERMS", patterns: []string{
		`\b(?:effective|commencement|expiration|termination)\s+date\b`,
		`\b(?:payment|due)\s+date\b`,
		`\b(?:notice|cure)\s+period\b`,
		`\b(?:liability|damage)\s+cap\b`,
	}},
	{label: "PARTIES", patterns: []string{
		`\b(?:party|parties)\s+(?:of\s+the\s+)?(?:first|second|third)\s+part\b`,
		`\b(?:licensor|licensee|contractor|subcontractor)\b`,
		`\b(?:buyer|seller|vendor|client|customer)\b`,
		`\b(?:employer|employee|consultant)\b`,
	}},
	{label: "ADDRESSES", patterns: []string{
		`\b\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Place|Pl)\b`,
		`\b[A-Z][a-z]+,\s+[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`,
	}},
	{label: "CONTACT_INFO", patterns: []string{
		`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
		`\b(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`,
		`\b(?:www\.)?[a-zA-Z0-9-]+\.[a-zA-Z]{2,}(?:\.[a-zA-Z]{2,})?\b`,
	}},
	{label: "LEGAL_CONCEPTS", patterns: []string{
		`\b(?:force\s+majeure|act\s+of\s+god)\b`,
		`\b(?:intellectual\s+property|trade\s+secret)\b`,
		`\b(?:non-disclosure|confidentiality)\s+agreement\b`,
		`\b(?:limitation\s+of\s+liability|indemnification)\b`,
	}},
}
