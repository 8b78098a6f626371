package persistence

import (
	"fmt"
	"net/url"
)

// EncodeFragment renders a state record as the URL fragment string
// used in share links. Keys are encoded in sorted order, so equal
// records always produce the same fragment
func EncodeFragment(record map[string]string) string {
	values := url.Values{}
	for key, value := range record {
		values.Set(key, value)
	}
	return values.Encode()
}

// DecodeFragment parses a share-link fragment back into a record
func DecodeFragment(fragment string) (map[string]string, error) {
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to parse share fragment: %v", err)
	}

	record := make(map[string]string, len(values))
	for key := range values {
		record[key] = values.Get(key)
	}
	return record, nil
}
