package registry

import "testing"

func TestDefaultRegistryKinds(t *testing.T) {
	r := Default()

	cases := map[BlockID]Kind{
		Air:          KindAir,
		Grass:        KindSolid,
		Stone:        KindSolid,
		Leaves:       KindLeaves,
		Water:        KindFluid,
		Lava:         KindFluid,
		ShortGrass:   KindShortPlant,
		TallGrassBot: KindTallPlant,
		TallGrassTop: KindTallPlant,
		Deepslate:    KindSolid,
	}
	for id, want := range cases {
		if got := r.Get(id).Kind; got != want {
			t.Errorf("block %d: kind %d, want %d", id, got, want)
		}
	}
}

func TestUnknownIDResolvesToAir(t *testing.T) {
	r := Default()
	if r.Known(200) {
		t.Fatalf("id 200 should not be registered")
	}
	e := r.Get(200)
	if e.ID != Air || e.Opaque {
		t.Errorf("unknown id resolved to %+v, want air", e)
	}
}

func TestGrassTintsTopOnly(t *testing.T) {
	g := Default().Get(Grass)
	if g.TintBy != TintTop {
		t.Errorf("grass tint mode = %d, want TintTop", g.TintBy)
	}
	if g.Top != 0 || g.Side != 1 || g.Bottom != 2 {
		t.Errorf("grass layers = %v/%v/%v, want 0/1/2", g.Top, g.Side, g.Bottom)
	}
}

func TestLookupByName(t *testing.T) {
	r := Default()
	id, ok := r.Lookup("deepslate")
	if !ok || id != Deepslate {
		t.Errorf("Lookup(deepslate) = %d, %v", id, ok)
	}
	if _, ok := r.Lookup("bedrock"); ok {
		t.Errorf("bedrock should not be registered")
	}
}
