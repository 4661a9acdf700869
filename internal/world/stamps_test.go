package world

import (
	"os"
	"reflect"
	"testing"

	"voxelstream/internal/registry"
	"voxelstream/pkg/stampmodel"
)

type memFS map[string][]byte

func (m memFS) ReadFile(name string) ([]byte, error) {
	b, ok := m[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return b, nil
}

func (m memFS) WriteFile(name string, data []byte) error {
	m[name] = append([]byte(nil), data...)
	return nil
}

func TestDefaultOakShape(t *testing.T) {
	oak := DefaultStamps().Oak.Records
	logs, leaves := 0, 0
	for _, r := range oak {
		switch registry.BlockID(r.Block) {
		case registry.Log:
			logs++
		case registry.Leaves:
			leaves++
		default:
			t.Fatalf("unexpected block %d in oak", r.Block)
		}
	}
	if logs != 6 || leaves != 37 {
		t.Errorf("oak has %d logs and %d leaves, want 6 and 37", logs, leaves)
	}
}

func TestLoadStampsGeneratesMissingFiles(t *testing.T) {
	fs := memFS{}
	s := LoadStamps(fs, registry.Default(), nil)

	if !reflect.DeepEqual(s.Oak.Records, DefaultStamps().Oak.Records) {
		t.Errorf("oak differs from compiled default")
	}
	for name := range DefaultStampRecords() {
		if _, ok := fs[stampmodel.FileName(name)]; !ok {
			t.Errorf("%s was not persisted", name)
		}
	}
}

func TestLoadStampsRoundTrip(t *testing.T) {
	fs := memFS{}
	first := LoadStamps(fs, registry.Default(), nil)
	second := LoadStamps(fs, registry.Default(), nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reloaded stamps differ from generated ones")
	}
}

func TestLoadStampsUsesCustomFile(t *testing.T) {
	fs := memFS{}
	custom := []stampmodel.Record{{DX: 0, DY: 0, DZ: 0, Block: uint8(registry.Stone)}}
	fs[stampmodel.FileName(StampTallGrass)] = stampmodel.Encode(custom)

	s := LoadStamps(fs, registry.Default(), nil)
	if !reflect.DeepEqual(s.TallGrass.Records, custom) {
		t.Errorf("tall grass = %v, want file contents", s.TallGrass.Records)
	}
}

func TestLoadStampsRejectsUnknownBlocks(t *testing.T) {
	fs := memFS{}
	fs[stampmodel.FileName(StampOak)] = stampmodel.Encode([]stampmodel.Record{{Block: 250}})

	s := LoadStamps(fs, registry.Default(), nil)
	if !reflect.DeepEqual(s.Oak.Records, DefaultStamps().Oak.Records) {
		t.Errorf("oak with unknown block should fall back to default")
	}
}
