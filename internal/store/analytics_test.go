package store

import (
	"testing"

	"github.com/surya9634/Work-Flow-zen/internal/core"
)

func TestAnalyticsStore_BumpUpdatesChannelAndTotal(t *testing.T) {
	s := NewAnalyticsStore(t.TempDir())

	s.Bump(core.ChannelMessenger, core.DirectionReceived)
	s.Bump(core.ChannelMessenger, core.DirectionSent)
	s.Bump(core.ChannelWhatsApp, core.DirectionSent)

	a := s.Snapshot()
	if got := a.Counters["messenger"]; got.Sent != 1 || got.Received != 1 {
		t.Errorf("messenger = %+v", got)
	}
	if got := a.Counters["whatsapp"]; got.Sent != 1 || got.Received != 0 {
		t.Errorf("whatsapp = %+v", got)
	}
	if got := a.Counters["total"]; got.Sent != 2 || got.Received != 1 {
		t.Errorf("total = %+v", got)
	}
}

func TestAnalyticsStore_SnapshotIsCopy(t *testing.T) {
	s := NewAnalyticsStore(t.TempDir())
	s.Bump(core.ChannelMessenger, core.DirectionSent)

	snap := s.Snapshot()
	snap.Counters["messenger"].Sent = 99

	if s.Snapshot().Counters["messenger"].Sent != 1 {
		t.Error("mutating a snapshot should not affect the store")
	}
}

func TestAnalyticsStore_PersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	s := NewAnalyticsStore(dir)
	s.Bump(core.ChannelWhatsApp, core.DirectionReceived)

	reloaded := NewAnalyticsStore(dir)
	if got := reloaded.Snapshot().Counters["whatsapp"]; got == nil || got.Received != 1 {
		t.Errorf("counters lost on reload: %+v", got)
	}
}
