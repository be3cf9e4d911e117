package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skiff2d/skiff/internal/component"
	"github.com/skiff2d/skiff/internal/engine"
	"github.com/skiff2d/skiff/internal/entity"
	"github.com/skiff2d/skiff/internal/geom"
)

// RectDef is one collider rectangle in a prefab, rotation in radians.
type RectDef struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	W        float64 `yaml:"w"`
	H        float64 `yaml:"h"`
	Rotation float64 `yaml:"rotation"`
}

type ColliderDef struct {
	OffsetX        float64   `yaml:"offset_x"`
	OffsetY        float64   `yaml:"offset_y"`
	Rects          []RectDef `yaml:"rects"`
	DebugDraw      bool      `yaml:"debug_draw"`
	MapInteraction bool      `yaml:"map_interaction"`
}

type SpriteDef struct {
	Texture   string  `yaml:"texture"`
	Frames    int     `yaml:"frames"`
	FrameTime float64 `yaml:"frame_time"`
	Order     int     `yaml:"order"`
}

type TextDef struct {
	Value string `yaml:"value"`
	Font  string `yaml:"font"`
}

type MusicDef struct {
	Track   string  `yaml:"track"`
	Looping bool    `yaml:"looping"`
	Volume  float64 `yaml:"volume"`
}

type MapDef struct {
	System string  `yaml:"system"` // orthogonal, hex-pointy, hex-flat, isometric
	Cols   int     `yaml:"cols"`
	Rows   int     `yaml:"rows"`
	TileW  float64 `yaml:"tile_w"`
	TileH  float64 `yaml:"tile_h"`
}

type ListenerDef struct {
	Event    string `yaml:"event"`
	Script   string `yaml:"script"`
	Function string `yaml:"function"`
}

// Prefab is one reusable entity template loaded from YAML.
type Prefab struct {
	Name       string        `yaml:"name"`
	Tags       []string      `yaml:"tags"`
	Persistent bool          `yaml:"persistent"`
	Script     string        `yaml:"script"`
	Collider   *ColliderDef  `yaml:"collider"`
	Sprite     *SpriteDef    `yaml:"sprite"`
	Text       *TextDef      `yaml:"text"`
	Music      *MusicDef     `yaml:"music"`
	Map        *MapDef       `yaml:"map"`
	Listeners  []ListenerDef `yaml:"listeners"`
}

type prefabFile struct {
	Prefabs []Prefab `yaml:"prefabs"`
}

// PrefabTable holds all prefabs indexed by name.
type PrefabTable struct {
	prefabs map[string]Prefab
}

// LoadPrefabs loads prefab templates from a YAML file.
func LoadPrefabs(path string) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefabs %s: %w", path, err)
	}
	var f prefabFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prefabs %s: %w", path, err)
	}
	t := &PrefabTable{prefabs: make(map[string]Prefab, len(f.Prefabs))}
	for _, p := range f.Prefabs {
		if p.Name == "" {
			return nil, fmt.Errorf("prefabs %s: entry with empty name", path)
		}
		if _, dup := t.prefabs[p.Name]; dup {
			return nil, fmt.Errorf("prefabs %s: duplicate prefab %q", path, p.Name)
		}
		t.prefabs[p.Name] = p
	}
	return t, nil
}

// Get returns the prefab with the given name.
func (t *PrefabTable) Get(name string) (Prefab, bool) {
	p, ok := t.prefabs[name]
	return p, ok
}

// Len returns the number of loaded prefabs.
func (t *PrefabTable) Len() int { return len(t.prefabs) }

// SpawnEntry places one prefab instance in a scene.
type SpawnEntry struct {
	Prefab string   `yaml:"prefab"`
	X      float64  `yaml:"x"`
	Y      float64  `yaml:"y"`
	Tags   []string `yaml:"tags"` // extra instance tags
}

type sceneFile struct {
	Spawns []SpawnEntry `yaml:"spawns"`
}

// LoadScene loads a spawn list from a YAML file.
func LoadScene(path string) ([]SpawnEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	var f sceneFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return f.Spawns, nil
}

func parseCoordSystem(s string) (component.CoordSystem, error) {
	switch s {
	case "", "orthogonal":
		return component.Orthogonal, nil
	case "hex-pointy":
		return component.HexPointyTop, nil
	case "hex-flat":
		return component.HexFlatTop, nil
	case "isometric":
		return component.Isometric, nil
	default:
		return 0, fmt.Errorf("unknown map coordinate system %q", s)
	}
}

// Instantiate builds one entity from a prefab at the given position.
func Instantiate(eng *engine.Engine, p Prefab, x, y float64) (*entity.Entity, error) {
	en := eng.CreateEntity()
	en.Persistent = p.Persistent
	en.SetPos(x, y)
	for _, tag := range p.Tags {
		en.AddTag(tag)
	}

	if p.Collider != nil {
		col := component.NewCollider()
		col.DebugDraw = p.Collider.DebugDraw
		col.MapInteraction = p.Collider.MapInteraction
		col.SetOffset(p.Collider.OffsetX, p.Collider.OffsetY)
		for _, rd := range p.Collider.Rects {
			r := geom.NewRect(rd.X, rd.Y, rd.W, rd.H)
			r.Rotation = rd.Rotation
			col.AddRect(r)
		}
		eng.AttachComponent(en, entity.NewComponent(col))
	}
	if p.Map != nil {
		sys, err := parseCoordSystem(p.Map.System)
		if err != nil {
			return nil, fmt.Errorf("prefab %q: %w", p.Name, err)
		}
		grid := component.NewMapGrid(sys, p.Map.Cols, p.Map.Rows, p.Map.TileW, p.Map.TileH)
		eng.AttachComponent(en, entity.NewComponent(grid))
	}
	if p.Sprite != nil {
		sp := component.NewSprite(p.Sprite.Texture, p.Sprite.Frames)
		sp.FrameTime = p.Sprite.FrameTime
		sp.Order = p.Sprite.Order
		eng.AttachComponent(en, entity.NewComponent(sp))
	}
	if p.Text != nil {
		eng.AttachComponent(en, entity.NewComponent(component.NewText(p.Text.Value, p.Text.Font)))
	}
	if p.Music != nil {
		m := component.NewMusic(p.Music.Track)
		m.Looping = p.Music.Looping
		if p.Music.Volume > 0 {
			m.Volume = p.Music.Volume
		}
		eng.AttachComponent(en, entity.NewComponent(m))
	}
	if p.Script != "" {
		eng.AttachComponent(en, entity.NewComponent(component.NewScriptBehavior(p.Script)))
	}
	for _, ld := range p.Listeners {
		l := component.NewListener(ld.Event, ld.Script, ld.Function)
		eng.AttachComponent(en, entity.NewComponent(l))
	}
	return en, nil
}

// SpawnScene instantiates every entry of a spawn list.
func SpawnScene(eng *engine.Engine, t *PrefabTable, spawns []SpawnEntry) (int, error) {
	count := 0
	for _, sp := range spawns {
		p, ok := t.Get(sp.Prefab)
		if !ok {
			return count, fmt.Errorf("scene references unknown prefab %q", sp.Prefab)
		}
		en, err := Instantiate(eng, p, sp.X, sp.Y)
		if err != nil {
			return count, err
		}
		for _, tag := range sp.Tags {
			en.AddTag(tag)
		}
		count++
	}
	return count, nil
}
