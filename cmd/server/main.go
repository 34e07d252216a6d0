// Package main provides the pattern-search service:
// - Search API: HTTP JSON endpoint plus a WebSocket for draw gestures
// - Corpus: built from stored sales records, rebuilt on a timer
// - Observability: health, status and Prometheus metrics endpoints
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"sketchmatch/internal/corpus"
	"sketchmatch/internal/domain"
	"sketchmatch/internal/ingestion"
	"sketchmatch/internal/observability"
	"sketchmatch/internal/search"
	"sketchmatch/internal/storage"
	chstore "sketchmatch/internal/storage/clickhouse"
	"sketchmatch/internal/storage/memory"
	"sketchmatch/internal/storage/migrations"
	pgstore "sketchmatch/internal/storage/postgres"
)

// Server holds all components of the search service.
type Server struct {
	// Configuration
	addr            string
	rebuildInterval time.Duration

	// Components
	recordStore storage.RecordStore
	pointStore  storage.SeriesPointStore // nil unless ClickHouse is the corpus source
	holder      *corpus.Holder
	service     *search.Service
	metrics     *observability.Metrics
	logger      *log.Logger

	// State
	mu          sync.Mutex
	startedAt   time.Time
	lastRebuild time.Time
	rebuilds    int
	searches    int
}

func main() {
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (corpus from prepared series points)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	recordsCSV := flag.String("records-csv", "", "Transactions CSV to seed the in-memory store")
	rebuildInterval := flag.Duration("rebuild-interval", 1*time.Hour, "Corpus rebuild interval")
	resamplePoints := flag.Int("resample-points", search.DefaultResamplePoints, "Resample point count N")
	topK := flag.Int("top-k", search.DefaultTopK, "Maximum number of matches returned")
	minDrawPoints := flag.Int("min-draw-points", search.DefaultMinDrawPoints, "Minimum stroke length to run a search")
	minSupport := flag.Int("min-support", 0, "Minimum non-zero periods per series (0 = min(5, periods/2))")
	workers := flag.Int("workers", 0, "Scoring worker count (0 = NumCPU)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" && *clickhouseDSN == "" {
		logger.Fatal("one of --postgres-dsn or --clickhouse-dsn is required (use --use-memory with --records-csv for local mode)")
	}
	if *useMemory && *recordsCSV == "" {
		logger.Fatal("--use-memory requires --records-csv to seed the corpus")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{
		addr:            *addr,
		rebuildInterval: *rebuildInterval,
		holder:          corpus.NewHolder(nil),
		metrics:         observability.NewMetrics(""),
		logger:          logger,
		startedAt:       time.Now(),
		service: search.NewService(search.Config{
			ResamplePoints:    *resamplePoints,
			TopK:              *topK,
			MinDrawPoints:     *minDrawPoints,
			MinSupportPeriods: *minSupport,
			Workers:           *workers,
		}),
	}

	// Open stores
	switch {
	case *useMemory:
		store := memory.NewRecordStore()
		if err := seedFromCSV(ctx, store, *recordsCSV, logger); err != nil {
			logger.Fatalf("Seed from CSV: %v", err)
		}
		s.recordStore = store
		logger.Printf("Using in-memory store seeded from %s", *recordsCSV)

	case *postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Run postgres migrations: %v", err)
		}
		s.recordStore = pgstore.NewRecordStore(pool)

	default:
		conn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Connect to clickhouse: %v", err)
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			logger.Fatalf("Run clickhouse migrations: %v", err)
		}
		s.pointStore = chstore.NewSeriesPointStore(conn)
	}

	// Initial corpus build
	if err := s.rebuildCorpus(ctx); err != nil {
		logger.Fatalf("Initial corpus build: %v", err)
	}

	// Periodic rebuild: a fresh index is built and swapped in; in-flight
	// searches finish against the index they loaded.
	go s.rebuildLoop(ctx)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	s.serve(ctx)
}

// seedFromCSV parses a transactions export and ingests it into the store.
func seedFromCSV(ctx context.Context, store storage.RecordStore, path string, logger *log.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := ingestion.ParseRecordsCSV(f)
	if err != nil {
		return err
	}

	runner := ingestion.NewRunner(store, logger)
	_, err = runner.IngestRecords(ctx, records)
	return err
}

// rebuildLoop rebuilds the corpus on a timer until the context is done.
func (s *Server) rebuildLoop(ctx context.Context) {
	ticker := time.NewTicker(s.rebuildInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.rebuildCorpus(ctx); err != nil {
				s.logger.Printf("Corpus rebuild failed: %v", err)
			}
		}
	}
}

// rebuildCorpus constructs a fresh index from the configured source and
// atomically publishes it. The old index is never mutated.
func (s *Server) rebuildCorpus(ctx context.Context) error {
	var (
		series     []*domain.TimeSeries
		periodKeys []string
	)

	if s.recordStore != nil {
		records, err := s.recordStore.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("load records: %w", err)
		}
		series, periodKeys = ingestion.Prepare(records)
	} else {
		points, err := s.pointStore.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("load series points: %w", err)
		}
		series, periodKeys, err = ingestion.SeriesFromPoints(points)
		if err != nil {
			return fmt.Errorf("rebuild series: %w", err)
		}
	}

	ix, err := corpus.NewIndex(periodKeys, series)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	s.holder.Swap(ix)
	s.metrics.CorpusSeries.Set(float64(ix.Len()))
	s.metrics.CorpusPeriods.Set(float64(ix.PeriodCount()))
	s.metrics.CorpusRebuilds.Inc()

	s.mu.Lock()
	s.lastRebuild = time.Now()
	s.rebuilds++
	s.mu.Unlock()

	s.logger.Printf("Corpus rebuilt: %d series, %d periods", ix.Len(), ix.PeriodCount())
	return nil
}

// serve runs the HTTP server until the context is cancelled.
func (s *Server) serve(ctx context.Context) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/ws/draw", s.handleDrawSocket)

	srv := &http.Server{Addr: s.addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("Starting HTTP server on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Fatalf("HTTP server error: %v", err)
	}
}

// SearchRequest is the JSON body of /api/search and of one /ws/draw message.
// A search fires once per completed stroke; there is no incremental
// re-matching while drawing.
type SearchRequest struct {
	Stroke   domain.Stroke `json:"stroke"`
	Category string        `json:"category"`
	TopK     int           `json:"topK,omitempty"`
	// PatternType is accepted for forward compatibility and currently unused.
	PatternType string `json:"patternType,omitempty"`
}

// SearchResponse is the JSON reply to a search request.
type SearchResponse struct {
	Matches    domain.RankedMatches `json:"matches"`
	Category   string               `json:"category"`
	PeriodKeys []string             `json:"periodKeys"`
	ElapsedMs  int64                `json:"elapsedMs"`
}

// runSearch executes one search and records metrics.
func (s *Server) runSearch(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	start := time.Now()
	ix := s.holder.Load()

	if req.Category == "" {
		req.Category = corpus.CategoryAll
	}

	matches, err := s.service.Search(ctx, ix, req.Stroke, req.Category)
	if err != nil {
		return nil, err
	}

	// Per-request TopK may only narrow the configured limit.
	if req.TopK > 0 && req.TopK < len(matches) {
		matches = matches[:req.TopK]
	}

	elapsed := time.Since(start)
	s.metrics.SearchesTotal.Inc()
	s.metrics.SearchDuration.Observe(elapsed.Seconds())
	s.metrics.MatchesReturned.Observe(float64(len(matches)))
	if len(matches) == 0 {
		reason := observability.ReasonNoMatches
		if len(req.Stroke) < s.service.Config().MinDrawPoints {
			reason = observability.ReasonShortStroke
		} else if ix == nil || len(ix.Eligible(req.Category, s.service.Config().MinSupportPeriods)) == 0 {
			reason = observability.ReasonEmptyCorpus
		}
		s.metrics.EmptyResults.WithLabelValues(reason).Inc()
	}
	if ix != nil {
		s.metrics.SeriesScored.Add(float64(len(ix.Eligible(req.Category, s.service.Config().MinSupportPeriods))))
	}

	s.mu.Lock()
	s.searches++
	s.mu.Unlock()

	var periodKeys []string
	if ix != nil {
		periodKeys = ix.PeriodKeys()
	}

	return &SearchResponse{
		Matches:    matches,
		Category:   req.Category,
		PeriodKeys: periodKeys,
		ElapsedMs:  elapsed.Milliseconds(),
	}, nil
}

// handleSearch serves POST /api/search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	resp, err := s.runSearch(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleCategories serves GET /api/categories.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ix := s.holder.Load()

	categories := []string{corpus.CategoryAll}
	if ix != nil {
		categories = append(categories, ix.Categories()...)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"categories": categories})
}

// upgrader upgrades draw-socket connections. The service sits behind the
// dashboard's own origin checks, so cross-origin requests are accepted here.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleDrawSocket serves GET /ws/draw. Each message carries one completed
// stroke; the reply is the ranked match list. Messages on one connection
// are processed in order, so a client cannot race two searches.
func (s *Server) handleDrawSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req SearchRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Printf("Draw socket read error: %v", err)
			}
			return
		}

		resp, err := s.runSearch(r.Context(), &req)
		if err != nil {
			conn.WriteJSON(map[string]string{"error": err.Error()})
			continue
		}

		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Printf("Draw socket write error: %v", err)
			return
		}
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	StartedAt    time.Time `json:"started_at"`
	LastRebuild  time.Time `json:"last_rebuild,omitempty"`
	Rebuilds     int       `json:"rebuilds"`
	Searches     int       `json:"searches"`
	CorpusSeries int       `json:"corpus_series"`
	Periods      int       `json:"periods"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ix := s.holder.Load()

	s.mu.Lock()
	resp := StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.startedAt).String(),
		StartedAt:   s.startedAt,
		LastRebuild: s.lastRebuild,
		Rebuilds:    s.rebuilds,
		Searches:    s.searches,
	}
	s.mu.Unlock()

	if ix != nil {
		resp.CorpusSeries = ix.Len()
		resp.Periods = ix.PeriodCount()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
