package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sample(tick uint64) SnapshotV1 {
	return SnapshotV1{
		Header:   Header{Version: Version, WorldID: "overworld", Tick: tick},
		TickRate: 20,
		Blocks: []BlockV1{
			{World: "overworld", Pos: [3]int{0, 64, 0}, Material: "CHEST", Size: 27, Slots: []SlotV1{
				{Slot: 0, Item: ItemV1{Material: "APPLE", Amount: 1, Tags: map[string]string{"display_item": "1"}}},
			}},
			{World: "overworld", Pos: [3]int{0, 64, -1}, Material: "OAK_WALL_SIGN", Facing: "NORTH",
				Sign: &SignV1{Lines: [4]string{"a", "b", "c", "d"}, Glowing: true}},
		},
		Players: []PlayerV1{{ID: "8667ba71-b85a-4004-af54-457a9734eed7", Name: "alice", GameMode: "SURVIVAL", Size: 36}},
		Tags:    []TagsV1{{Ref: "overworld@0,64,-1", Keys: map[string]string{"trade_sign": "1"}}},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName(42))
	want := sample(42)
	if err := WriteSnapshot(path, want); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h != want.Header {
		t.Fatalf("header=%+v", h)
	}
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(1))
	s := sample(1)
	s.Header.Version = 9
	if err := WriteSnapshot(path, s); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestLatestPicksHighestTick(t *testing.T) {
	dir := t.TempDir()
	if got := Latest(dir); got != "" {
		t.Fatalf("empty dir gave %q", got)
	}
	for _, tick := range []uint64{9, 120, 33} {
		if err := WriteSnapshot(filepath.Join(dir, FileName(tick)), sample(tick)); err != nil {
			t.Fatalf("WriteSnapshot: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, want := Latest(dir), filepath.Join(dir, "120.snap.zst"); got != want {
		t.Fatalf("Latest=%q, want %q", got, want)
	}
}
