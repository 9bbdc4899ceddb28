package fields

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Operation is a single RFC6902 patch op emitted by the extraction chain.
type Operation struct {
	Op    string `json:"op" jsonschema:"required,enum=add,enum=replace,description=Patch operation kind"`
	Path  string `json:"path" jsonschema:"required,description=JSON pointer of the field to write"`
	Value any    `json:"value,omitempty" jsonschema:"description=The value extracted from the user's words"`
}

// UpdateOps is the forced tool-call payload for bulk field extraction.
type UpdateOps struct {
	Ops []Operation `json:"ops" jsonschema:"description=Operations for information explicitly provided by the user; empty when nothing was provided"`
}

// FieldName strips the leading slash of a single-level pointer.
func (o Operation) FieldName() string {
	return strings.TrimPrefix(o.Path, "/")
}

// Apply runs the ops against the document and returns the patched copy. The
// input document is never mutated; on any error the original is returned
// unchanged. Replace ops targeting keys the omitted-empty encoding dropped
// are rewritten to add first.
func Apply(current Details, ops []Operation) (Details, error) {
	if len(ops) == 0 {
		return current, nil
	}

	currentJSON, err := json.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("marshal current document: %w", err)
	}
	ops = fixMissingTargets(currentJSON, ops)

	patchJSON, err := json.Marshal(ops)
	if err != nil {
		return current, fmt.Errorf("marshal patch operations: %w", err)
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return current, fmt.Errorf("decode patch: %w", err)
	}
	patched, err := patch.Apply(currentJSON)
	if err != nil {
		return current, fmt.Errorf("apply patch: %w", err)
	}

	var out Details
	if err := json.Unmarshal(patched, &out); err != nil {
		return current, fmt.Errorf("patched document has wrong shape: %w", err)
	}
	return out, nil
}

func fixMissingTargets(currentJSON []byte, ops []Operation) []Operation {
	var doc map[string]any
	if err := json.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		if op.Op == "replace" {
			if _, exists := doc[op.FieldName()]; !exists {
				op.Op = "add"
			}
		}
		fixed = append(fixed, op)
	}
	return fixed
}
