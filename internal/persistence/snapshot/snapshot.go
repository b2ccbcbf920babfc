package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const (
	Version = 1
	Ext     = ".snap.zst"
)

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
}

// SnapshotV1 is the full state of an economy world between two ticks.
// Deferred tasks are not part of it; the world only snapshots after a drain.
type SnapshotV1 struct {
	Header Header `json:"header"`

	TickRate           int `json:"tick_rate_hz"`
	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`

	Blocks  []BlockV1  `json:"blocks"`
	Players []PlayerV1 `json:"players"`
	Drops   []DropV1   `json:"drops,omitempty"`
	Tags    []TagsV1   `json:"tags,omitempty"`
}

type BlockV1 struct {
	World    string   `json:"world"`
	Pos      [3]int   `json:"pos"`
	Material string   `json:"material"`
	Facing   string   `json:"facing,omitempty"`
	Sign     *SignV1  `json:"sign,omitempty"`
	Size     int      `json:"size,omitempty"`
	Slots    []SlotV1 `json:"slots,omitempty"`
}

type SignV1 struct {
	Lines   [4]string `json:"lines"`
	Glowing bool      `json:"glowing,omitempty"`
}

type SlotV1 struct {
	Slot int    `json:"slot"`
	Item ItemV1 `json:"item"`
}

type ItemV1 struct {
	Material string            `json:"material"`
	Amount   int               `json:"amount"`
	Name     string            `json:"name,omitempty"`
	Texture  string            `json:"texture,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

type PlayerV1 struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Op       bool     `json:"op,omitempty"`
	GameMode string   `json:"game_mode"`
	Size     int      `json:"size"`
	Slots    []SlotV1 `json:"slots,omitempty"`
}

type DropV1 struct {
	World string `json:"world"`
	Pos   [3]int `json:"pos"`
	Item  ItemV1 `json:"item"`
}

// TagsV1 carries one tag object. Worlds backed by a tag database leave
// this empty.
type TagsV1 struct {
	Ref  string            `json:"ref"`
	Keys map[string]string `json:"keys"`
}

// FileName is the snapshot file name for tick.
func FileName(tick uint64) string { return strconv.FormatUint(tick, 10) + Ext }

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header line is for tools; gob carries it too.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

// Latest returns the path of the highest-tick snapshot in dir, or "" if
// there is none.
func Latest(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, Ext) {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, Ext), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
