package store

import (
	"regexp"

	"policyqa/internal/dataset"
	"policyqa/internal/logging"
)

// PolicyRecord is one dataset document keyed by its policy identifier.
type PolicyRecord struct {
	ID string
	dataset.Document
}

// RecordStore maps policy identifiers to their records. It is built once
// at startup and read-only afterward.
type RecordStore struct {
	byID map[string]PolicyRecord
	docs []dataset.Document
}

// policyIDField matches the serialized policy_id field of a document.
var policyIDField = regexp.MustCompile(`policy_id:\s*(POL\d+)`)

// BuildRecordStore constructs the lookup map from the loaded documents.
// Rows without an extractable policy_id are excluded from the map (they
// remain in the full corpus for ingestion and listing); duplicate IDs
// overwrite, last write wins.
func BuildRecordStore(docs []dataset.Document) *RecordStore {
	s := &RecordStore{
		byID: make(map[string]PolicyRecord, len(docs)),
		docs: docs,
	}

	for _, doc := range docs {
		m := policyIDField.FindStringSubmatch(doc.Content)
		if m == nil {
			logging.Store("Row %s has no extractable policy_id, excluded from lookup map", doc.Metadata["row"])
			continue
		}
		s.byID[m[1]] = PolicyRecord{ID: m[1], Document: doc}
	}

	logging.Store("Record store built: %d unique policy IDs from %d documents", len(s.byID), len(docs))
	return s
}

// Lookup returns the record for the given policy identifier.
func (s *RecordStore) Lookup(id string) (PolicyRecord, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// Len returns the number of records in the lookup map.
func (s *RecordStore) Len() int {
	return len(s.byID)
}

// Documents returns the full corpus, including rows excluded from the
// lookup map.
func (s *RecordStore) Documents() []dataset.Document {
	return s.docs
}
