package records

import "encoding/json"

// marshalFlattened merges the opaque payload fields into the typed base
// fields, dropping empty base values. Payload keys win on collision so the
// caller stays in control of the wire body.
func marshalFlattened(base, payload map[string]any) ([]byte, error) {
	merged := make(map[string]any, len(base)+len(payload))
	for k, v := range base {
		switch t := v.(type) {
		case string:
			if t == "" {
				continue
			}
		case int:
			if t == 0 {
				continue
			}
		case Type:
			if t == "" {
				continue
			}
		}
		merged[k] = v
	}
	for k, v := range payload {
		merged[k] = v
	}
	return json.Marshal(merged)
}
