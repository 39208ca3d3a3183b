package retrieval

import (
	"policyqa/internal/logging"
	"policyqa/internal/store"
)

// Resolver decides what record context, if any, a query receives.
type Resolver struct {
	records *store.RecordStore
}

// NewResolver creates a resolver over the given record store.
func NewResolver(records *store.RecordStore) *Resolver {
	return &Resolver{records: records}
}

// Resolve returns zero or one records for the query:
//
//  1. no policy ID in the query: empty, no context
//  2. policy ID present but unknown: empty ("not found")
//  3. policy ID present and known: exactly that record
//
// There is no fallback to semantic search: ambiguous or general queries
// get no context at all rather than similarity-matched records.
func (r *Resolver) Resolve(query string) []store.PolicyRecord {
	id, ok := ExtractPolicyID(query)
	if !ok {
		logging.Retrieval("No specific policy ID found in query. No document retrieval.")
		return nil
	}

	rec, found := r.records.Lookup(id)
	if !found {
		logging.Retrieval("Policy ID %q not found. No document retrieval.", id)
		return nil
	}

	logging.Retrieval("Directly retrieved policy: %s", id)
	return []store.PolicyRecord{rec}
}
