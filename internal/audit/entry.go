package audit

import "time"

// Event kinds recorded in the log.
const (
	EventValidation = "validation"
	EventLiveAccess = "live_access"
)

// GateRecord is the summary of one gate outcome kept in an entry.
type GateRecord struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Entry is one audit record. Entries are chained: each carries the hash
// of its predecessor and its own hash computed with Hash empty.
type Entry struct {
	Seq             uint64       `json:"seq"`
	ID              string       `json:"id"`
	Event           string       `json:"event"`
	Timestamp       time.Time    `json:"timestamp"`
	ArtifactName    string       `json:"artifactName"`
	ArtifactType    string       `json:"artifactType"`
	Transport       string       `json:"transport,omitempty"`
	GateResults     []GateRecord `json:"gateResults,omitempty"`
	OverallApproved bool         `json:"overallApproved"`
	OverallStatus   string       `json:"overallStatus,omitempty"`
	Strictness      string       `json:"strictness"`
	SourceHash      string       `json:"sourceHash,omitempty"` // 32-bit rolling hash, live access only
	PrevHash        string       `json:"prevHash"`
	Hash            string       `json:"hash"`
}

func (e Entry) clone() Entry {
	if e.GateResults != nil {
		e.GateResults = append([]GateRecord(nil), e.GateResults...)
	}
	return e
}
