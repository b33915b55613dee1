package wire

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Codec is the version-dependent encode/decode boundary. Message field
// presence and cmd-id numbering vary by client protocol version; a lookup
// miss is an ordinary false, never a panic.
type Codec interface {
	Decode(version, name string, body []byte, out any) bool
	Encode(version, name string, msg any) ([]byte, bool)
	CmdIDFor(version, name string) (uint16, bool)
	NameFor(version string, cmdID uint16) (string, bool)
}

// PacketHead is the transport-level header attached to every client packet
// handed to the simulator.
type PacketHead struct {
	UID       uint32
	ClientSeq uint32
	Version   string
}

// Output is the fire-and-forget message sink the simulation writes through.
// A missing recipient session is silently skipped.
type Output interface {
	Send(uid uint32, name string, msg any)
	SendToAll(name string, msg any)
	SendToOthers(hostUID uint32, name string, msg any)
}

// CmdTable maps message names to cmd ids for every supported protocol
// version. Loaded once from YAML, read-only afterwards.
type CmdTable struct {
	byName map[string]map[string]uint16
	byID   map[string]map[uint16]string
}

type cmdTableFile struct {
	Versions []struct {
		Version  string `yaml:"version"`
		Messages []struct {
			Name  string `yaml:"name"`
			CmdID uint16 `yaml:"cmd_id"`
		} `yaml:"messages"`
	} `yaml:"versions"`
}

// LoadCmdTable loads the per-version cmd-id tables from YAML.
func LoadCmdTable(path string) (*CmdTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cmd table: %w", err)
	}
	var f cmdTableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse cmd table: %w", err)
	}
	t := &CmdTable{
		byName: make(map[string]map[string]uint16, len(f.Versions)),
		byID:   make(map[string]map[uint16]string, len(f.Versions)),
	}
	for _, v := range f.Versions {
		names := make(map[string]uint16, len(v.Messages))
		ids := make(map[uint16]string, len(v.Messages))
		for _, m := range v.Messages {
			names[m.Name] = m.CmdID
			ids[m.CmdID] = m.Name
		}
		t.byName[v.Version] = names
		t.byID[v.Version] = ids
	}
	return t, nil
}

// NewCmdTable builds a table from an in-memory version map. Test helper.
func NewCmdTable(versions map[string]map[string]uint16) *CmdTable {
	t := &CmdTable{
		byName: make(map[string]map[string]uint16, len(versions)),
		byID:   make(map[string]map[uint16]string, len(versions)),
	}
	for ver, names := range versions {
		byName := make(map[string]uint16, len(names))
		byID := make(map[uint16]string, len(names))
		for name, id := range names {
			byName[name] = id
			byID[id] = name
		}
		t.byName[ver] = byName
		t.byID[ver] = byID
	}
	return t
}

// JSONCodec is the reference Codec: JSON bodies with the cmd-id tables
// supplying the per-version name mapping. The production reflection codec
// plugs in behind the same interface.
type JSONCodec struct {
	table *CmdTable
}

func NewJSONCodec(table *CmdTable) *JSONCodec {
	return &JSONCodec{table: table}
}

func (c *JSONCodec) Decode(version, name string, body []byte, out any) bool {
	if _, ok := c.table.byName[version][name]; !ok {
		return false
	}
	return json.Unmarshal(body, out) == nil
}

func (c *JSONCodec) Encode(version, name string, msg any) ([]byte, bool) {
	if _, ok := c.table.byName[version][name]; !ok {
		return nil, false
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (c *JSONCodec) CmdIDFor(version, name string) (uint16, bool) {
	id, ok := c.table.byName[version][name]
	return id, ok
}

func (c *JSONCodec) NameFor(version string, cmdID uint16) (string, bool) {
	name, ok := c.table.byID[version][cmdID]
	return name, ok
}
