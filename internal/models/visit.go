package models

import (
	"time"

	"github.com/google/uuid"
)

// Visit classification outcomes.
const (
	VisitAd      = "AD"
	VisitOrganic = "ORGANIC"
	VisitDirect  = "DIRECT"
)

// Visit is one tracked landing on an advertised site, classified by how the
// visitor arrived.
type Visit struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Type      string    `json:"type"`
	Keyword   string    `json:"keyword"`
	URL       string    `json:"url"`
	Referrer  string    `json:"referrer"`
}
