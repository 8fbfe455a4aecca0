package cache

import (
	"encoding/json"
	"fmt"
)

func marshalRecord(rec GameActionRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal action record: %w", err)
	}
	return string(data), nil
}
