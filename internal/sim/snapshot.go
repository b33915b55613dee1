package sim

import (
	"encoding/json"
	"fmt"
)

// PlayerSnapshot is the persisted form of one player world. Outside the
// core it travels as an opaque JSON blob.
type PlayerSnapshot struct {
	UID        uint32             `json:"uid"`
	SceneID    uint32             `json:"sceneId"`
	AvatarID   uint32             `json:"avatarId"`
	FightProps map[uint32]float32 `json:"fightProps,omitempty"`
}

// ParseSnapshot decodes a snapshot blob.
func ParseSnapshot(data []byte) (*PlayerSnapshot, error) {
	snap := &PlayerSnapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("parse player snapshot: %w", err)
	}
	return snap, nil
}

func (s *PlayerSnapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}
