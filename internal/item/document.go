package item

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var errNotObject = errors.New("item document must be a JSON object")

// linkNormalizers maps each shop link key to its clean-up function.
var linkNormalizers = map[string]func(string) string{
	"aUrl": NormalizeAmazonURL,
	"yUrl": NormalizeURLLite,
	"rUrl": NormalizeURLLite,
}

// NormalizeDocument applies the link clean-up of Item.Normalize to a raw
// item document. Only string-valued aUrl, yUrl and rUrl keys are rewritten;
// every other key keeps its value and type. Keys come back sorted.
func NormalizeDocument(data []byte) (json.RawMessage, error) {
	fields, err := decodeObject(data)
	if err != nil {
		return nil, err
	}

	for key, normalize := range linkNormalizers {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var link string
		if json.Unmarshal(raw, &link) != nil {
			continue
		}
		if clean := normalize(link); clean != link {
			if fields[key], err = marshal(clean); err != nil {
				return nil, err
			}
		}
	}
	return marshal(fields)
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// marshal encodes v without HTML escaping, so links keep their '&'.
func marshal(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func intField(fields map[string]json.RawMessage, key string) int {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return int(f)
	}
	n, _ := strconv.Atoi(strings.TrimSpace(stringField(fields, key)))
	return n
}
