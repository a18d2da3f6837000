package domain

import (
	"errors"
	"fmt"
)

// QAIntent names the extractor that produced an answer.
type QAIntent string

const (
	IntentMoney        QAIntent = "money"
	IntentParty        QAIntent = "party"
	IntentDate         QAIntent = "date"
	IntentJurisdiction QAIntent = "jurisdiction"
	IntentTermination  QAIntent = "termination"
	IntentPayment      QAIntent = "payment"
	IntentGeneral      QAIntent = "general"
)

type QAResult struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Context    string   `json:"context"`
	Sources    []string `json:"sources"`
	Intent     QAIntent `json:"intent"`
}

func NewQAResult(r QAResult) (QAResult, error) {
	if r.Answer == "" {
		return QAResult{}, WrapError(ErrInvalidInput, "new qa result", errors.New("empty answer"))
	}
	if err := checkConfidence(r.Confidence); err != nil {
		return QAResult{}, WrapError(ErrInvalidInput, "new qa result", err)
	}
	if r.Intent == "" {
		return QAResult{}, WrapError(ErrInvalidInput, "new qa result", fmt.Errorf("missing intent"))
	}
	r.Sources = cloneStrings(r.Sources)
	return r, nil
}

// Found reports whether the answer is backed by at least one source.
func (r QAResult) Found() bool {
	return len(r.Sources) > 0
}
