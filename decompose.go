package taskgraph

import (
	"bytes"
	"encoding/json"
)

// TaskRecord is one parsed record from the external goal-decomposition
// service: a numeric ID local to the plan, a task description, and the
// numeric IDs of the tasks it depends on.
type TaskRecord struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	DependsOn   []int  `json:"depends_on"`
}

// FromRecords builds a fresh graph from decomposition output.
//
// One node is created per record and a hard edge is added from each
// dependency's node to the record's node. A dependency referencing a numeric
// ID not present among the records is silently skipped. The returned mapping
// translates record IDs to generated node IDs.
func FromRecords(records []TaskRecord) (*Graph, map[int]string) {
	g := New()
	ids := make(map[int]string, len(records))

	for _, r := range records {
		ids[r.ID] = g.AddNode(Node{Description: r.Description})
	}
	for _, r := range records {
		for _, dep := range r.DependsOn {
			src, ok := ids[dep]
			if !ok {
				continue
			}
			// Endpoints are known to exist; a duplicate dependency in the
			// record is tolerated.
			_ = g.AddEdge(Edge{Source: src, Target: ids[r.ID], DependencyType: DependencyHard})
		}
	}
	return g, ids
}

// ParseRecords decodes a decomposition payload.
//
// Decoding is strict: unknown fields or trailing data mark the payload as
// malformed, and a malformed payload is discarded entirely — the caller gets
// nil records and therefore an empty graph, never a partially-parsed one.
func ParseRecords(payload []byte) []TaskRecord {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var records []TaskRecord
	if err := dec.Decode(&records); err != nil {
		return nil
	}
	if dec.More() {
		return nil
	}
	return records
}
