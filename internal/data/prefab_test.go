package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff2d/skiff/internal/component"
	"github.com/skiff2d/skiff/internal/config"
	"github.com/skiff2d/skiff/internal/engine"
	"github.com/skiff2d/skiff/internal/entity"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := config.Defaults()
	cfg.Scripting.Dir = t.TempDir()
	eng, err := engine.New(cfg, nil, nil, nil, nil)
	require.NoError(t, err)
	t.Cleanup(eng.Shutdown)
	return eng
}

const samplePrefabs = `
prefabs:
  - name: crate
    tags: [prop]
    collider:
      rects:
        - { x: 0, y: 0, w: 16, h: 16 }
      map_interaction: true
    sprite:
      texture: crate.png
      frames: 1
  - name: jukebox
    music:
      track: theme.ogg
      looping: true
      volume: 0.5
    text:
      value: "Jukebox"
      font: default
  - name: arena
    map:
      system: orthogonal
      cols: 8
      rows: 8
      tile_w: 32
      tile_h: 32
`

func TestLoadPrefabs(t *testing.T) {
	path := writeTemp(t, "prefabs.yaml", samplePrefabs)
	table, err := LoadPrefabs(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())

	crate, ok := table.Get("crate")
	require.True(t, ok)
	assert.Equal(t, []string{"prop"}, crate.Tags)
	require.NotNil(t, crate.Collider)
	assert.True(t, crate.Collider.MapInteraction)
	require.Len(t, crate.Collider.Rects, 1)
	assert.Equal(t, 16.0, crate.Collider.Rects[0].W)

	_, ok = table.Get("ghost")
	assert.False(t, ok)
}

func TestLoadPrefabsRejectsDuplicates(t *testing.T) {
	path := writeTemp(t, "prefabs.yaml", `
prefabs:
  - name: twin
  - name: twin
`)
	_, err := LoadPrefabs(path)
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadPrefabsRejectsEmptyName(t *testing.T) {
	path := writeTemp(t, "prefabs.yaml", `
prefabs:
  - tags: [broken]
`)
	_, err := LoadPrefabs(path)
	assert.ErrorContains(t, err, "empty name")
}

func TestInstantiate(t *testing.T) {
	path := writeTemp(t, "prefabs.yaml", samplePrefabs)
	table, err := LoadPrefabs(path)
	require.NoError(t, err)
	eng := newTestEngine(t)

	crate, _ := table.Get("crate")
	en, err := Instantiate(eng, crate, 100, 50)
	require.NoError(t, err)

	assert.Equal(t, 100.0, en.Pos.X)
	assert.True(t, en.HasTag("prop"))

	colComp, ok := en.FindComponent(entity.KindCollider)
	require.True(t, ok)
	col := colComp.Data.(*component.Collider)
	assert.True(t, col.MapInteraction)
	_, ok = en.FindComponent(entity.KindSprite)
	assert.True(t, ok)

	require.NotNil(t, en.WorldBounds, "collider geometry feeds entity bounds")
	assert.Equal(t, 100.0, en.WorldBounds.Min.X)
	assert.Equal(t, 116.0, en.WorldBounds.Max.X)
}

func TestInstantiateRejectsUnknownCoordSystem(t *testing.T) {
	eng := newTestEngine(t)
	p := Prefab{
		Name: "warped",
		Map:  &MapDef{System: "spherical", Cols: 2, Rows: 2, TileW: 8, TileH: 8},
	}
	_, err := Instantiate(eng, p, 0, 0)
	assert.ErrorContains(t, err, "spherical")
}

func TestSpawnScene(t *testing.T) {
	prefabPath := writeTemp(t, "prefabs.yaml", samplePrefabs)
	table, err := LoadPrefabs(prefabPath)
	require.NoError(t, err)

	scenePath := writeTemp(t, "scene.yaml", `
spawns:
  - { prefab: crate, x: 10, y: 20 }
  - { prefab: crate, x: 30, y: 40, tags: [marked] }
  - { prefab: jukebox, x: 0, y: 0 }
`)
	spawns, err := LoadScene(scenePath)
	require.NoError(t, err)
	require.Len(t, spawns, 3)

	eng := newTestEngine(t)
	n, err := SpawnScene(eng, table, spawns)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, eng.EntityCount())
}

func TestSpawnSceneUnknownPrefab(t *testing.T) {
	eng := newTestEngine(t)
	table := &PrefabTable{prefabs: map[string]Prefab{}}
	_, err := SpawnScene(eng, table, []SpawnEntry{{Prefab: "nope"}})
	assert.ErrorContains(t, err, "nope")
}
