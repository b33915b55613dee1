package component

import (
	"testing"

	"github.com/aethergs/server/internal/gamedata"
)

func TestPendingReadsWinWithinTick(t *testing.T) {
	fp := NewFightProperties()
	fp.Seed(gamedata.FightPropCurHP, 100)

	fp.Set(gamedata.FightPropCurHP, 80)
	if got := fp.Get(gamedata.FightPropCurHP); got != 80 {
		t.Errorf("Get = %v; want pending 80", got)
	}
	fp.Change(gamedata.FightPropCurHP, -30)
	if got := fp.Get(gamedata.FightPropCurHP); got != 50 {
		t.Errorf("Get after Change = %v; want 50", got)
	}
	if fp.DirtyCount() != 1 {
		t.Errorf("DirtyCount = %d; want 1", fp.DirtyCount())
	}
}

func TestSeedIsNotDirty(t *testing.T) {
	fp := NewFightProperties()
	fp.Seed(gamedata.FightPropMaxHP, 500)
	if fp.DirtyCount() != 0 {
		t.Errorf("DirtyCount after Seed = %d; want 0", fp.DirtyCount())
	}
}

func TestFlushDrainsAndMerges(t *testing.T) {
	fp := NewFightProperties()
	fp.Seed(gamedata.FightPropCurHP, 100)
	fp.Set(gamedata.FightPropCurHP, 60)
	fp.Set(gamedata.FightPropCurSpeed, 12)

	drained := make(map[gamedata.FightProp]float32)
	fp.Flush(func(prop gamedata.FightProp, v float32) {
		drained[prop] = v
	})

	if len(drained) != 2 {
		t.Fatalf("drained %d props; want 2", len(drained))
	}
	if drained[gamedata.FightPropCurHP] != 60 {
		t.Errorf("drained hp = %v; want 60", drained[gamedata.FightPropCurHP])
	}
	if fp.DirtyCount() != 0 {
		t.Errorf("DirtyCount after Flush = %d; want 0", fp.DirtyCount())
	}
	// merged values stay readable
	if got := fp.Get(gamedata.FightPropCurHP); got != 60 {
		t.Errorf("Get after Flush = %v; want 60", got)
	}
}

func TestSetClamped(t *testing.T) {
	fp := NewFightProperties()
	if got := fp.SetClamped(gamedata.FightPropCurHP, -5, 0, 100); got != 0 {
		t.Errorf("clamp low = %v; want 0", got)
	}
	if got := fp.SetClamped(gamedata.FightPropCurHP, 250, 0, 100); got != 100 {
		t.Errorf("clamp high = %v; want 100", got)
	}
	if got := fp.SetClamped(gamedata.FightPropCurHP, 42, 0, 100); got != 42 {
		t.Errorf("clamp mid = %v; want 42", got)
	}
}
