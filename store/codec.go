package store

import "encoding/json"

// The snowflake-list and string-list columns (hl_blocks, ignored,
// disabled_channels, disabled_commands) are stored as JSON text with a
// '[]' column default, so both drivers share one encoding.

func EncodeIDList(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeIDList(raw string) ([]int64, error) {
	ids := []int64{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func EncodeStringList(vals []string) (string, error) {
	if vals == nil {
		vals = []string{}
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeStringList(raw string) ([]string, error) {
	vals := []string{}
	if raw == "" {
		return vals, nil
	}
	if err := json.Unmarshal([]byte(raw), &vals); err != nil {
		return nil, err
	}
	return vals, nil
}
