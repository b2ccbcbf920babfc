package world

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type adminSnapshotReq struct {
	Resp chan adminSnapshotResp
}

type adminSnapshotResp struct {
	Tick uint64
	Err  string
}

// RequestSnapshot has the loop hand a snapshot of the last completed tick to
// the sink. Safe for any goroutine.
func (w *World) RequestSnapshot(ctx context.Context) (tick uint64, err error) {
	resp := make(chan adminSnapshotResp, 1)
	req := adminSnapshotReq{Resp: resp}

	select {
	case w.admin <- req:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	select {
	case r := <-resp:
		if r.Err != "" {
			return r.Tick, errors.New(r.Err)
		}
		return r.Tick, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (w *World) handleAdminSnapshotRequests(reqs []adminSnapshotReq) {
	if len(reqs) == 0 {
		return
	}
	var snapTick uint64
	if cur := w.tick.Load(); cur > 0 {
		snapTick = cur - 1
	}
	resp := adminSnapshotResp{Tick: snapTick}
	if err := w.emitSnapshot(snapTick); err != nil {
		resp.Err = err.Error()
		w.log.Warn("requested snapshot failed", zap.Uint64("tick", snapTick), zap.Error(err))
	}
	for _, r := range reqs {
		if r.Resp == nil {
			continue
		}
		select {
		case r.Resp <- resp:
		default:
			// requester gave up
		}
	}
}

func (w *World) emitSnapshot(tick uint64) error {
	if w.snapshotSink == nil {
		return errors.New("snapshot sink not configured")
	}
	select {
	case w.snapshotSink <- w.ExportSnapshot(tick):
		return nil
	default:
		return errors.New("snapshot sink backpressure")
	}
}
