// internal/game/utils.go
package game

import (
	"encoding/json"
	"fmt"
)

// EncodeState marshals a GameState into the document stored in the shared store.
func EncodeState(s *GameState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state %s: %w", s.ID, err)
	}
	return data, nil
}

// DecodeState parses a stored document back into a GameState.
func DecodeState(data []byte) (*GameState, error) {
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	if s.Hands == nil {
		return nil, fmt.Errorf("game state %s has no hands", s.ID)
	}
	return &s, nil
}
