package domain

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	SizeBytes   int64          `json:"size_bytes"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	RiskLevel   RiskLevel      `json:"risk_level,omitempty"`
	RiskScore   float64        `json:"risk_score,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DocumentAnalysis is the persisted output of the processing pipeline.
type DocumentAnalysis struct {
	DocumentID  string         `json:"document_id"`
	Text        string         `json:"-"`
	Summary     string         `json:"summary"`
	Entities    EntitySet      `json:"entities"`
	EntityStats EntityStats    `json:"entity_stats"`
	Clauses     []string       `json:"clauses"`
	Risk        RiskAssessment `json:"risk"`
	CreatedAt   time.Time      `json:"created_at"`
}

// DocumentFingerprint derives the short content id used to key sessions on raw text.
func DocumentFingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:8]
}

// ContentHash is the full SHA-256 of the text, used as a cache key for results
// that depend only on the text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
