// Package describe annotates profiles and permissions with descriptive text
// looked up from a public SPARQL endpoint (DBpedia). Results are cached on
// disk with a TTL so repeated exports do not hammer the remote service.
package describe

import "time"

// Description is one cached lookup result.
type Description struct {
	Term      string    `json:"term"`
	Abstract  string    `json:"abstract"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}
