package store

import (
	"encoding/json"
	"fmt"
)

// marshalSpaces converts the spaces of a reference to JSON TEXT for storage.
func marshalSpaces(spaces []string) (string, error) {
	if spaces == nil {
		spaces = []string{}
	}
	data, err := json.Marshal(spaces)
	if err != nil {
		return "", fmt.Errorf("marshal spaces: %w", err)
	}
	return string(data), nil
}

// unmarshalSpaces parses JSON TEXT produced by marshalSpaces.
func unmarshalSpaces(data string) ([]string, error) {
	var spaces []string
	if err := json.Unmarshal([]byte(data), &spaces); err != nil {
		return nil, fmt.Errorf("unmarshal spaces: %w", err)
	}
	return spaces, nil
}
