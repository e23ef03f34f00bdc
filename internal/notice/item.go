package notice

import (
	"fmt"
	"strconv"
	"strings"
)

// Item is one feed-returned record. The feed's JSON schema varies per
// category and per API revision, so items stay schemaless: everything except
// the identity field is display data passed through to message formatting.
type Item map[string]any

// Str returns a field rendered as a string ("" when absent).
// Numeric JSON values are rendered without an exponent.
func (it Item) Str(key string) string {
	v, ok := it[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON numbers decode to float64; most feed numbers are integral.
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Amount parses a numeric field (given either as a number or a digit string).
// Missing or unparsable values yield 0, matching the feed's habit of omitting
// price fields on some notice types.
func (it Item) Amount(key string) int64 {
	v, ok := it[key]
	if !ok || v == nil {
		return 0
	}
	switch x := v.(type) {
	case float64:
		return int64(x)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// ID extracts the identity value for dedup under the given descriptor.
// Empty when the feed record lacks the field.
func (it Item) ID(d Descriptor) string {
	return strings.TrimSpace(it.Str(d.IDField))
}
