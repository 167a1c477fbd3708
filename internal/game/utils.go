// internal/game/utils.go
package game

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// EncodeEvent marshals a SessionEvent into JSON bytes.
// Logs a warning and returns empty JSON "{}" on marshalling error.
func EncodeEvent(ev SessionEvent) []byte {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Warnf("failed to marshal SessionEvent type %s: %v", ev.Type, err)
		return []byte("{}")
	}
	return data
}

// indexFromPayload reads the "index" (or "idx") hand position from an action payload.
func indexFromPayload(payload map[string]interface{}) (int, error) {
	val, ok := payload["index"]
	if !ok {
		val, ok = payload["idx"]
	}
	if !ok || val == nil {
		return 0, fmt.Errorf("missing index")
	}
	switch v := val.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("index must be a whole number")
		}
		return int(v), nil
	case int:
		return v, nil
	}
	return 0, fmt.Errorf("invalid type for index")
}
