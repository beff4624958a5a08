package scan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrOddReply is returned for a RESP-2 key/value array with a dangling key.
var ErrOddReply = errors.New("scan: odd number of elements in key/value reply")

// DecodeHash decodes an HGETALL reply into map[string]string. It accepts
// the RESP-2 flat array, the RESP-3 map, and typed go-redis commands.
// String and []byte values are taken verbatim so stored query text,
// double spaces included, round-trips.
func DecodeHash(raw any) (map[string]string, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]string{}, nil
	case *redis.MapStringStringCmd:
		if err := v.Err(); err != nil {
			return nil, err
		}
		return v.Val(), nil
	case map[string]string:
		return v, nil
	case *redis.Cmd:
		if err := v.Err(); err != nil {
			return nil, err
		}
		return DecodeHash(v.Val())
	}
	return toStrMap(raw)
}

// DecodeString decodes a single bulk-string reply (HGET, GET).
func DecodeString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case *redis.StringCmd:
		return v.Result()
	default:
		return "", fmt.Errorf("scan: unsupported string reply %T", raw)
	}
}

/*───────────────────────────────
|  KV payload → map              |
└───────────────────────────────*/

func toStrMap(v any) (map[string]string, error) {
	switch t := v.(type) {
	case []interface{}: // RESP-2 KV list
		if len(t)%2 != 0 {
			return nil, ErrOddReply
		}
		m := make(map[string]string, len(t)/2)
		for i := 0; i+1 < len(t); i += 2 {
			m[toStr(t[i])] = toStr(t[i+1])
		}
		return m, nil

	case map[interface{}]interface{}: // RESP-3 map
		m := make(map[string]string, len(t))
		for k, v := range t {
			m[toStr(k)] = toStr(v)
		}
		return m, nil

	case map[string]interface{}:
		m := make(map[string]string, len(t))
		for k, v := range t {
			m[k] = toStr(v)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("scan: unsupported kv type %T", v)
	}
}

/*───────────────────────────────
|  Small util fns                |
└───────────────────────────────*/

func toStr(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
