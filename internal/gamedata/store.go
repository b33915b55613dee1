package gamedata

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Store holds every parsed ability definition, keyed by name and by the
// 32-bit name hash used in the compact wire encoding. It is built once by
// LoadStore and never mutated afterwards, so all lookups are safe for
// unsynchronized concurrent reads from every world goroutine.
type Store struct {
	abilities  map[string]*AbilityDefinition
	nameByHash map[uint32]string
}

// LoadStore recursively parses every .json ability file under root. Files are
// parsed in parallel; a file that fails to parse is logged and skipped, it
// does not abort the load. Each file holds either a single ability object or
// an array of them.
func LoadStore(root string, log *zap.Logger) (*Store, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk ability dir %s: %w", root, err)
	}

	s := &Store{
		abilities:  make(map[string]*AbilityDefinition, len(paths)*4),
		nameByHash: make(map[uint32]string, len(paths)*4),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, path := range paths {
		path := path
		g.Go(func() error {
			defs, err := parseAbilityFile(path)
			if err != nil {
				log.Warn("skipping unparsable ability file",
					zap.String("file", path), zap.Error(err))
				return nil
			}
			mu.Lock()
			for _, def := range defs {
				if def.AbilityName == "" {
					continue
				}
				if _, dup := s.abilities[def.AbilityName]; dup {
					log.Warn("duplicate ability name, keeping first",
						zap.String("ability", def.AbilityName), zap.String("file", path))
					continue
				}
				s.abilities[def.AbilityName] = def
				s.nameByHash[AbilityNameHash(def.AbilityName)] = def.AbilityName
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseAbilityFile(path string) ([]*AbilityDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimLeftFunc(string(raw), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if strings.HasPrefix(trimmed, "[") {
		var defs []*AbilityDefinition
		if err := json.Unmarshal(raw, &defs); err != nil {
			return nil, err
		}
		return defs, nil
	}
	def := &AbilityDefinition{}
	if err := json.Unmarshal(raw, def); err != nil {
		return nil, err
	}
	return []*AbilityDefinition{def}, nil
}

// GetByName returns the parsed ability definition for an interned name.
// A name absent from the store is unresolved: callers log and drop, they do
// not insert.
func (s *Store) GetByName(name string) (*AbilityDefinition, bool) {
	def, ok := s.abilities[name]
	return def, ok
}

// NameByHash maps a compact wire hash back to the interned ability name.
func (s *Store) NameByHash(hash uint32) (string, bool) {
	name, ok := s.nameByHash[hash]
	return name, ok
}

func (s *Store) Count() int {
	return len(s.abilities)
}

// NewStoreFromDefs builds a store directly from in-memory definitions.
// Used by tests and by GM tooling that injects synthetic graphs.
func NewStoreFromDefs(defs ...*AbilityDefinition) *Store {
	s := &Store{
		abilities:  make(map[string]*AbilityDefinition, len(defs)),
		nameByHash: make(map[uint32]string, len(defs)),
	}
	for _, def := range defs {
		s.abilities[def.AbilityName] = def
		s.nameByHash[AbilityNameHash(def.AbilityName)] = def.AbilityName
	}
	return s
}
