package data

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/scriptworld/internal/bridge"
	"github.com/l1jgo/scriptworld/internal/core/ecs"
)

// Prefab is a named entity template. Components are keyed by registered
// type name (short or full), each holding field overrides applied on top of
// the type's default value.
type Prefab struct {
	Name       string                    `yaml:"name"`
	Components map[string]map[string]any `yaml:"components"`
	Children   []Prefab                  `yaml:"children"`
}

// PrefabTable indexes top-level prefabs by name.
type PrefabTable struct {
	byName map[string]*Prefab
	spawn  []string // spawned once at boot, in order
}

// Get returns a prefab by name, or nil if not found.
func (t *PrefabTable) Get(name string) *Prefab {
	return t.byName[name]
}

// Count returns the number of prefabs loaded.
func (t *PrefabTable) Count() int {
	return len(t.byName)
}

// Startup returns the prefab names listed for boot-time spawning.
func (t *PrefabTable) Startup() []string {
	return t.spawn
}

// Spawn instantiates the named prefab and its children.
func (t *PrefabTable) Spawn(sw *bridge.ScriptWorld, name string) (ecs.EntityID, error) {
	p := t.byName[name]
	if p == nil {
		return 0, fmt.Errorf("prefab: unknown prefab %q", name)
	}
	return SpawnPrefab(sw, p)
}

// SpawnStartup spawns every prefab in the boot list.
func (t *PrefabTable) SpawnStartup(sw *bridge.ScriptWorld) ([]ecs.EntityID, error) {
	ids := make([]ecs.EntityID, 0, len(t.spawn))
	for _, name := range t.spawn {
		id, err := t.Spawn(sw, name)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SpawnPrefab builds p through sw. A failure part-way despawns whatever
// was created for p.
func SpawnPrefab(sw *bridge.ScriptWorld, p *Prefab) (ecs.EntityID, error) {
	e := sw.Spawn()
	if err := applyPrefab(sw, e, p); err != nil {
		_ = sw.DespawnRecursive(e)
		return 0, fmt.Errorf("prefab %q: %w", p.Name, err)
	}
	return e, nil
}

func applyPrefab(sw *bridge.ScriptWorld, e ecs.EntityID, p *Prefab) error {
	if p.Name != "" {
		if h, ok := sw.TypeByName("Name"); ok {
			dv, err := sw.AddDefaultComponent(e, h)
			if err != nil {
				return err
			}
			if err := dv.SetField("Value", p.Name); err != nil {
				return err
			}
		}
	}

	types := make([]string, 0, len(p.Components))
	for name := range p.Components {
		types = append(types, name)
	}
	slices.Sort(types)

	for _, typeName := range types {
		h, ok := sw.TypeByName(typeName)
		if !ok {
			return fmt.Errorf("unknown type %q", typeName)
		}
		dv, err := sw.AddDefaultComponent(e, h)
		if err != nil {
			return err
		}
		for field, val := range p.Components[typeName] {
			if err := dv.SetField(field, val); err != nil {
				return fmt.Errorf("%s: %w", typeName, err)
			}
		}
	}

	for i := range p.Children {
		child := sw.Spawn()
		if err := sw.PushChild(e, child); err != nil {
			sw.Despawn(child)
			return err
		}
		if err := applyPrefab(sw, child, &p.Children[i]); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	return nil
}

// --- YAML loading ---

type prefabFile struct {
	Prefabs []Prefab `yaml:"prefabs"`
	Spawn   []string `yaml:"spawn"`
}

// LoadPrefabTable loads prefab definitions from YAML.
func LoadPrefabTable(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prefab: read %s: %w", path, err)
	}
	t, err := parsePrefabs(raw)
	if err != nil {
		return nil, fmt.Errorf("prefab: parse %s: %w", path, err)
	}
	return t, nil
}

func parsePrefabs(raw []byte) (*PrefabTable, error) {
	var f prefabFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	t := &PrefabTable{byName: make(map[string]*Prefab, len(f.Prefabs))}
	for i := range f.Prefabs {
		p := &f.Prefabs[i]
		if p.Name == "" {
			return nil, fmt.Errorf("prefab %d has no name", i)
		}
		if _, dup := t.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate prefab %q", p.Name)
		}
		t.byName[p.Name] = p
	}
	var errs []error
	for _, name := range f.Spawn {
		if _, ok := t.byName[name]; !ok {
			errs = append(errs, fmt.Errorf("spawn list names unknown prefab %q", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	t.spawn = f.Spawn
	return t, nil
}
