// Package record handles JSON documents that mix typed members with caller-defined ones.
//
// Stored products, cart lines, orders and users keep whatever extra members clients sent
// (descriptions, addresses, profile data). Types decode the members they know and keep the
// rest in a Fields map that is written back unchanged.
package record

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// Fields holds JSON members by name
type Fields map[string]json.RawMessage

// Split decodes data into dst and returns the members whose names are not in known.
// Names match ignoring case, the same way encoding/json binds them to dst.
func Split(data []byte, dst any, known ...string) (Fields, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}

	var all Fields
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for member := range all {
		for _, name := range known {
			if strings.EqualFold(member, name) {
				delete(all, member)
				break
			}
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// Join encodes typed and adds every extra member typed does not already define
func Join(typed any, extra Fields) ([]byte, error) {
	if len(extra) == 0 {
		return json.Marshal(typed)
	}

	members, err := ToFields(typed)
	if err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := members[name]; !ok {
			members[name] = raw
		}
	}
	return json.Marshal(members)
}

// ToFields encodes v and returns its top-level members
func ToFields(v any) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var members Fields
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if members == nil {
		members = Fields{}
	}
	return members, nil
}

// Overlay returns base with every member of patch written over it
func Overlay(base any, patch Fields) (Fields, error) {
	merged, err := ToFields(base)
	if err != nil {
		return nil, err
	}
	maps.Copy(merged, patch)
	return merged, nil
}

// Set encodes v and stores it under name
func (f Fields) Set(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f[name] = raw
	return nil
}

// Without returns a copy of f without the named members
func (f Fields) Without(names ...string) Fields {
	out := maps.Clone(f)
	for _, name := range names {
		delete(out, name)
	}
	return out
}
