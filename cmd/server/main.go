package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"realcoins/internal/persistence/archive"
	"realcoins/internal/persistence/snapshot"
	"realcoins/internal/persistence/tagdb"
	"realcoins/internal/sim/tuning"
	"realcoins/internal/sim/world"
	"realcoins/internal/transport/admin"
	"realcoins/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "game websocket listen address")
		adminAddr  = flag.String("admin_addr", "127.0.0.1:8081", "admin http listen address (empty to disable)")
		adminKey   = flag.String("admin_secret", os.Getenv("REALCOINS_ADMIN_SECRET"), "HS256 secret for admin tokens (empty: loopback only)")
		worldID    = flag.String("world", "overworld", "world id")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		configPath = flag.String("config", "", "path to config.yaml (empty: built-in defaults)")
		snapPath   = flag.String("snapshot", "", "path to snapshot to load (default: latest in data dir)")
		dev        = flag.Bool("dev", false, "development logging")
	)
	flag.Parse()

	logger := newLogger(*dev)
	defer func() { _ = logger.Sync() }()

	cfg, err := tuning.Load(*configPath, logger)
	if err != nil {
		logger.Fatal("load config", zap.String("path", *configPath), zap.Error(err))
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	snapDir := filepath.Join(worldDir, "snapshots")
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		logger.Fatal("create data dir", zap.Error(err))
	}

	tags, err := tagdb.Open(filepath.Join(worldDir, "tags.sqlite"), logger)
	if err != nil {
		logger.Fatal("open tag database", zap.Error(err))
	}
	defer tags.Close()

	w, err := world.New(world.Config{ID: *worldID}, cfg, world.Options{Tags: tags, Logger: logger})
	if err != nil {
		logger.Fatal("create world", zap.Error(err))
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" {
		snapshotToLoad = snapshot.Latest(snapDir)
	}
	if snapshotToLoad != "" {
		snap, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatal("read snapshot", zap.String("path", snapshotToLoad), zap.Error(err))
		}
		if err := w.ImportSnapshot(snap); err != nil {
			logger.Fatal("import snapshot", zap.String("path", snapshotToLoad), zap.Error(err))
		}
		logger.Info("resumed from snapshot", zap.String("path", snapshotToLoad), zap.Uint64("tick", snap.Header.Tick))
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for snap := range snapCh {
			writeSnapshot(logger, worldDir, snapDir, cfg.Runtime.SnapshotKeep, snap)
		}
	}()

	worldDone := make(chan error, 1)
	go func() { worldDone <- w.Run(ctx) }()

	mux := http.NewServeMux()
	mux.Handle("/v1/ws", ws.NewServer(w, logger).Handler())
	game := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go serve(logger, "game", game)

	var adminSrv *http.Server
	if strings.TrimSpace(*adminAddr) != "" {
		api := admin.NewServer(w, logger)
		api.Secret = []byte(*adminKey)
		adminSrv = &http.Server{Addr: *adminAddr, Handler: api.Router(), ReadHeaderTimeout: 5 * time.Second}
		go serve(logger, "admin", adminSrv)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = game.Shutdown(shutdownCtx)
	if adminSrv != nil {
		_ = adminSrv.Shutdown(shutdownCtx)
	}
	if err := <-worldDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("world stopped", zap.Error(err))
	}

	// The loop has exited, so the final snapshot is taken here.
	final := w.ExportSnapshot(w.CurrentTick())
	close(snapCh)
	<-writerDone
	writeSnapshot(logger, worldDir, snapDir, cfg.Runtime.SnapshotKeep, final)
	if err := tags.Flush(shutdownCtx); err != nil {
		logger.Error("flush tag database", zap.Error(err))
	}
}

func newLogger(dev bool) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	if dev {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return l
}

func serve(logger *zap.Logger, name string, srv *http.Server) {
	logger.Info("listening", zap.String("server", name), zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", zap.String("server", name), zap.Error(err))
	}
}

func writeSnapshot(logger *zap.Logger, worldDir, snapDir string, keep int, snap snapshot.SnapshotV1) {
	path := filepath.Join(snapDir, snapshot.FileName(snap.Header.Tick))
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		logger.Error("snapshot write", zap.String("path", path), zap.Error(err))
		return
	}
	logger.Info("snapshot written", zap.String("path", path), zap.Uint64("tick", snap.Header.Tick))

	moved, err := archive.Rotate(worldDir, snapDir, keep)
	if err != nil {
		logger.Warn("snapshot archive", zap.Error(err))
	}
	if len(moved) > 0 {
		logger.Info("snapshots archived", zap.Int("count", len(moved)))
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
