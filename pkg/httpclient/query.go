package httpclient

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query-string pair. Value is expected to be a string, bool or
// numeric type; anything else is formatted with fmt.
type Param struct {
	Key   string
	Value any
}

// Query is an ordered list of query parameters. Encoding preserves insertion order
// and keeps duplicate keys.
type Query []Param

// Q builds a Query from alternating key/value arguments. A trailing key without a
// value is ignored.
func Q(kv ...any) Query {
	q := make(Query, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		q = q.Add(fmt.Sprint(kv[i]), kv[i+1])
	}
	return q
}

// Add appends a pair and returns the extended query.
func (q Query) Add(key string, value any) Query {
	return append(q, Param{Key: key, Value: value})
}

// Encode renders the query in form encoding ("a=1&b=two+words").
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(formatValue(p.Value)))
	}
	return sb.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
