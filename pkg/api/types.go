package api

import (
	"time"

	"github.com/coolbeans/ontoscope/pkg/ontology"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SnapshotInfo identifies a loaded snapshot.
type SnapshotInfo struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Triples     int       `json:"triples"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// HealthResponse reports liveness and the active snapshot, if any.
type HealthResponse struct {
	Status   string        `json:"status"`
	Snapshot *SnapshotInfo `json:"snapshot"`
}

// ClassesResponse lists class records.
type ClassesResponse struct {
	Count   int                    `json:"count"`
	Classes []ontology.ClassRecord `json:"classes"`
}

// PropertiesResponse lists property records.
type PropertiesResponse struct {
	Count      int                       `json:"count"`
	Properties []ontology.PropertyRecord `json:"properties"`
}
