package domain

import "time"

// Source identifies the portal a listing came from.
type Source string

const (
	SourceGupy     Source = "gupy"
	SourceIndeed   Source = "indeed"
	SourceLinkedIn Source = "linkedin"
	SourceEmail    Source = "email"
)

// RawListing is the shape a source adapter hands to the normalizer.
// Field presence varies per portal; the adapter fills what it has and the
// normalizer decides what is usable. RawListings are discarded after
// normalization.
type RawListing struct {
	URL          string
	SourceKey    string // portal-side job id, used when the URL is unstable
	Title        string
	Company      string
	Location     string
	Remote       bool
	RemoteHint   string // free text that may carry a remote signal
	ContractType string
	PostedText   string // publication date as scraped, absolute or relative
}

// Listing is the canonical record every stage downstream of the normalizer
// operates on. Read-only after creation.
type Listing struct {
	Identity     string
	URL          string
	Title        string
	Company      string
	Location     string
	IsRemote     bool
	ContractType string // Efetivo/Temporário/Estágio/Aprendiz/PJ or free text
	PublishedAt  *time.Time // nil means age unknown
	Source       Source
}

// DeliveryRecord marks an identity as sent. Written once, never updated.
type DeliveryRecord struct {
	Identity    string
	DeliveredAt time.Time
}
