// Package archive moves old world snapshots out of the live snapshot
// directory.
package archive

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"realcoins/internal/persistence/snapshot"
)

// Meta describes one archived snapshot. It is written next to the file as
// <name>.meta.json.
type Meta struct {
	WorldID    string `json:"world_id"`
	Tick       uint64 `json:"tick"`
	Snapshot   string `json:"snapshot"`
	ArchivedAt string `json:"archived_at"`
}

// Rotate keeps the newest keep snapshots in snapDir and moves the rest to
// worldDir/archives. keep <= 0 does nothing. It returns the archived paths.
func Rotate(worldDir, snapDir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	ents, err := os.ReadDir(snapDir)
	if err != nil {
		return nil, err
	}
	type entry struct {
		name string
		tick uint64
	}
	var snaps []entry
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapshot.Ext) {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, snapshot.Ext), 10, 64)
		if err != nil {
			continue
		}
		snaps = append(snaps, entry{name, tick})
	}
	if len(snaps) <= keep {
		return nil, nil
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].tick < snaps[j].tick })

	dir := filepath.Join(worldDir, "archives")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var moved []string
	for _, s := range snaps[:len(snaps)-keep] {
		name := s.name
		src := filepath.Join(snapDir, name)
		dst := filepath.Join(dir, name)
		h, err := snapshot.ReadHeader(src)
		if err != nil {
			return moved, err
		}
		if err := moveFile(src, dst); err != nil {
			return moved, err
		}
		meta := Meta{WorldID: h.WorldID, Tick: h.Tick, Snapshot: name, ArchivedAt: time.Now().UTC().Format(time.RFC3339Nano)}
		if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
			_ = os.WriteFile(dst+".meta.json", b, 0o644)
		}
		moved = append(moved, dst)
	}
	return moved, nil
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
