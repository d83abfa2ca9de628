// Package tree navigates the nested parameter documents reported by an ACS.
//
// Device documents are loosely typed JSON whose shape varies across vendors
// and namespace roots, so they are handled as generic decoded JSON
// (map[string]interface{}) with explicit accessors rather than static structs.
package tree

import (
	"strconv"
	"strings"
)

// Document is a device parameter tree as decoded from an NBI response.
type Document = map[string]interface{}

// Walk descends the document along a dotted path and returns the raw node,
// or nil if any segment is missing or a non-object is hit before the end.
func Walk(doc Document, path string) interface{} {
	if doc == nil || path == "" {
		return nil
	}
	var node interface{} = doc
	for _, seg := range strings.Split(path, ".") {
		obj, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		node, ok = obj[seg]
		if !ok {
			return nil
		}
	}
	return node
}

// Extract returns the scalar value at a dotted path. GenieACS wraps leaf
// values as {"_value": ...}; if the terminal node is an object containing a
// value key, the wrapped value is returned instead of the object itself.
func Extract(doc Document, path string) interface{} {
	return Unwrap(Walk(doc, path))
}

// Unwrap strips the {"_value": ...} leaf wrapper if present.
func Unwrap(node interface{}) interface{} {
	if obj, ok := node.(map[string]interface{}); ok {
		if v, ok := obj["_value"]; ok {
			return v
		}
		if v, ok := obj["value"]; ok {
			return v
		}
	}
	return node
}

// Instance is one numbered sub-object with its extracted fields.
type Instance struct {
	Index  int
	Fields map[string]interface{}
}

// DefaultMaxInstances bounds numbered-instance enumeration.
const DefaultMaxInstances = 8

// Instances enumerates numbered children under basePath, indices 1..max.
// An index whose child is missing or not an object is skipped, not treated
// as a stop condition: TR-069 instance tables may have gaps. Each requested
// field is extracted with the same leaf-unwrapping rule as Extract, and the
// instance records its index.
func Instances(doc Document, basePath string, fields []string, max int) []Instance {
	if max <= 0 {
		max = DefaultMaxInstances
	}
	base, ok := Walk(doc, basePath).(map[string]interface{})
	if !ok {
		return nil
	}

	var out []Instance
	for i := 1; i <= max; i++ {
		child, ok := base[strconv.Itoa(i)].(map[string]interface{})
		if !ok {
			continue
		}
		inst := Instance{Index: i, Fields: make(map[string]interface{}, len(fields))}
		for _, f := range fields {
			inst.Fields[f] = Extract(child, f)
		}
		out = append(out, inst)
	}
	return out
}

// InstancesFirst tries sibling base paths in order (typically the modern and
// legacy namespace roots) and returns the instances from the first path that
// yields any. Fallback is whole-group: fields are never mixed across roots.
func InstancesFirst(doc Document, basePaths []string, fields []string, max int) []Instance {
	for _, base := range basePaths {
		if got := Instances(doc, base, fields, max); len(got) > 0 {
			return got
		}
	}
	return nil
}
