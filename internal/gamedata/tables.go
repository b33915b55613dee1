package gamedata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SceneInfo is one scene entry from the scene list.
type SceneInfo struct {
	SceneID  uint32
	Savable  bool
	GroupIDs []uint32
}

// SceneTable holds scene tuning data, including the allow-list of scenes in
// which a world snapshot may be persisted.
type SceneTable struct {
	scenes map[uint32]*SceneInfo
}

func (t *SceneTable) Get(sceneID uint32) *SceneInfo {
	return t.scenes[sceneID]
}

// Savable reports whether a world sitting in the given scene may be saved.
func (t *SceneTable) Savable(sceneID uint32) bool {
	s, ok := t.scenes[sceneID]
	return ok && s.Savable
}

func (t *SceneTable) Count() int {
	return len(t.scenes)
}

type sceneEntry struct {
	SceneID  uint32   `yaml:"scene_id"`
	Savable  bool     `yaml:"savable"`
	GroupIDs []uint32 `yaml:"group_ids"`
}

type sceneListFile struct {
	Scenes []sceneEntry `yaml:"scenes"`
}

// LoadSceneTable loads scene definitions from YAML.
func LoadSceneTable(path string) (*SceneTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenes: %w", err)
	}
	var f sceneListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scenes: %w", err)
	}
	t := &SceneTable{scenes: make(map[uint32]*SceneInfo, len(f.Scenes))}
	for _, e := range f.Scenes {
		t.scenes[e.SceneID] = &SceneInfo{
			SceneID:  e.SceneID,
			Savable:  e.Savable,
			GroupIDs: e.GroupIDs,
		}
	}
	return t, nil
}

// AvatarInfo is one playable-avatar template: base combat properties plus the
// ability names granted on spawn.
type AvatarInfo struct {
	AvatarID  uint32
	Name      string
	BaseProps map[FightProp]float32
	Abilities []string
}

// AvatarTable holds all avatar templates indexed by id.
type AvatarTable struct {
	avatars map[uint32]*AvatarInfo
}

func (t *AvatarTable) Get(avatarID uint32) *AvatarInfo {
	return t.avatars[avatarID]
}

func (t *AvatarTable) Count() int {
	return len(t.avatars)
}

type avatarEntry struct {
	AvatarID    uint32   `yaml:"avatar_id"`
	Name        string   `yaml:"name"`
	BaseHP      float32  `yaml:"base_hp"`
	BaseAttack  float32  `yaml:"base_attack"`
	BaseDefense float32  `yaml:"base_defense"`
	Abilities   []string `yaml:"abilities"`
}

type avatarListFile struct {
	Avatars []avatarEntry `yaml:"avatars"`
}

// LoadAvatarTable loads avatar templates from YAML.
func LoadAvatarTable(path string) (*AvatarTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read avatars: %w", err)
	}
	var f avatarListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse avatars: %w", err)
	}
	t := &AvatarTable{avatars: make(map[uint32]*AvatarInfo, len(f.Avatars))}
	for _, e := range f.Avatars {
		t.avatars[e.AvatarID] = &AvatarInfo{
			AvatarID: e.AvatarID,
			Name:     e.Name,
			BaseProps: map[FightProp]float32{
				FightPropBaseHP:      e.BaseHP,
				FightPropBaseAttack:  e.BaseAttack,
				FightPropBaseDefense: e.BaseDefense,
				FightPropMaxHP:       e.BaseHP,
				FightPropCurHP:       e.BaseHP,
				FightPropCurAttack:   e.BaseAttack,
				FightPropCurDefense:  e.BaseDefense,
			},
			Abilities: e.Abilities,
		}
	}
	return t, nil
}
