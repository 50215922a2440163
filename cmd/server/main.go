package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"voxelhold.dev/internal/persistence/indexdb"
	persistlog "voxelhold.dev/internal/persistence/log"
	"voxelhold.dev/internal/persistence/worldfile"
	"voxelhold.dev/internal/sim/catalogs"
	"voxelhold.dev/internal/sim/tuning"
	"voxelhold.dev/internal/sim/world"
	"voxelhold.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed (used only when starting a fresh world)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the save index database")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("create world dir: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index db: upsert catalogs: %v", err)
		}
	}

	// A present world file wins over the -seed flag: edits only replay
	// correctly against the seed they were made on.
	worldPath := filepath.Join(worldDir, "world.vhw")
	worldSeed := *seed
	var loaded *worldfile.FileV1
	if worldfile.Exists(worldPath) {
		f, err := worldfile.Read(worldPath)
		if err != nil {
			logger.Fatalf("read world file: %v", err)
		}
		if f.Header.WorldID != "" && f.Header.WorldID != *worldID {
			logger.Fatalf("world file id mismatch: flag=%s file=%s", *worldID, f.Header.WorldID)
		}
		worldSeed = f.Seed
		if f.BoundR > 0 {
			tune.WorldBoundR = f.BoundR
		}
		loaded = &f
	}

	w, err := world.New(world.Config{ID: *worldID, Seed: worldSeed, Tune: tune}, cats, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	if loaded != nil {
		dropped := w.Store().Load(loaded.Edits, true)
		if dropped > 0 {
			logger.Printf("world file: dropped %d stale edit records", dropped)
		}
		if d := w.Store().Digest(); loaded.Digest != "" && d != loaded.Digest {
			logger.Printf("world file digest mismatch: file=%s live=%s", loaded.Digest, d)
		}
		logger.Printf("resumed world=%s edits=%d saved_at=%s", *worldID, w.Store().EditCount(), loaded.SavedAt.Format(time.RFC3339))
	}

	auditLog := persistlog.NewAuditLogger(worldDir)
	defer auditLog.Close()
	if idx != nil {
		w.SetAudit(multiAuditSink{a: auditLog, b: idx})
	} else {
		w.SetAudit(auditLog)
	}

	saver := worldfile.NewSaver(worldPath, *worldID, worldSeed, tune.WorldBoundR)
	if idx != nil {
		saver.SetRecorder(idx)
	}
	w.SetSaver(saver)

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m := w.Metrics()

		fmt.Fprintf(rw, "# HELP voxelhold_world_players Connected players.\n")
		fmt.Fprintf(rw, "# TYPE voxelhold_world_players gauge\n")
		fmt.Fprintf(rw, "voxelhold_world_players{world=%q} %d\n", *worldID, m.Players)

		fmt.Fprintf(rw, "# HELP voxelhold_world_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE voxelhold_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "voxelhold_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "inbox", m.InboxDepth)
		fmt.Fprintf(rw, "voxelhold_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "join", m.JoinDepth)
		fmt.Fprintf(rw, "voxelhold_world_queue_depth{world=%q,queue=%q} %d\n", *worldID, "leave", m.LeaveDepth)

		if idx != nil {
			st := idx.Stats()
			fmt.Fprintf(rw, "# HELP voxelhold_index_queue_depth Index writer backlog.\n")
			fmt.Fprintf(rw, "# TYPE voxelhold_index_queue_depth gauge\n")
			fmt.Fprintf(rw, "voxelhold_index_queue_depth %d\n", st.QueueDepth)
			fmt.Fprintf(rw, "# HELP voxelhold_index_dropped_total Rows dropped by the index writer.\n")
			fmt.Fprintf(rw, "# TYPE voxelhold_index_dropped_total counter\n")
			fmt.Fprintf(rw, "voxelhold_index_dropped_total{kind=%q} %d\n", "audit", st.DropAuditTotal)
			fmt.Fprintf(rw, "voxelhold_index_dropped_total{kind=%q} %d\n", "save", st.DropSaveTotal)
		}
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, tune.MaxQueue, logger).Handler())

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s (world=%s seed=%d)", *addr, *worldID, worldSeed)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	// World.Run writes the final save before returning.
	<-worldDone
	if idx != nil {
		idx.Sync()
	}
	logger.Printf("bye")
}

// multiAuditSink fans audit entries out to the JSONL log and the index.
type multiAuditSink struct {
	a *persistlog.AuditLogger
	b *indexdb.SQLiteIndex
}

func (m multiAuditSink) RecordBlockOp(e world.AuditEntry) {
	m.a.RecordBlockOp(e)
	m.b.RecordBlockOp(e)
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
