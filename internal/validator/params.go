package validator

// Params holds a rule's parameter map. Values arrive JSON-decoded, so
// numbers are float64 and lists are []any; the accessors normalize that and
// fall back to the given default for absent or mistyped values.
type Params map[string]any

// Int returns the integer parameter under key, or def.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

// Bool returns the boolean parameter under key, or def.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// String returns the string parameter under key, or def.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Strings returns the string-list parameter under key, or nil.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
