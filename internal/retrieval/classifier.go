// Package retrieval implements the strict policy-ID retrieval path:
// a pure classifier extracting policy identifiers from queries, and a
// resolver that gates context on an exact record-store hit. Semantic
// similarity is never consulted here; that guardrail keeps unrelated or
// sensitive records out of the answer context.
package retrieval

import (
	"regexp"
	"strings"

	"policyqa/internal/logging"
)

// policyIDPattern matches a policy identifier: "POL" followed by exactly
// three digits. Queries are uppercased before matching so the scan is
// case-insensitive.
var policyIDPattern = regexp.MustCompile(`POL\d{3}`)

// ExtractPolicyID scans the query for the first policy identifier and
// returns it uppercased. Pure and stateless; only the first match is
// considered.
func ExtractPolicyID(query string) (string, bool) {
	id := policyIDPattern.FindString(strings.ToUpper(query))
	if id == "" {
		logging.RetrievalDebug("No policy ID found in query")
		return "", false
	}
	logging.RetrievalDebug("Extracted policy ID %s from query", id)
	return id, true
}
