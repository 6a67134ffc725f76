package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"threadpool/internal/events"
	"threadpool/internal/logger"
	"threadpool/internal/pool"
	"threadpool/internal/workload"

	"golang.org/x/net/websocket"
)

// Server はプールの状態を公開し、乗算タスクを受け付けるAPIサーバー
type Server struct {
	addr      string
	pool      *pool.Pool
	bus       *events.Bus
	taskDelay time.Duration
	log       *logger.Logger

	mu        sync.RWMutex
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成する
// bus は p に設定したものと同じイベントバスを渡す
func NewServer(addr string, p *pool.Pool, bus *events.Bus) *Server {
	return &Server{
		addr:      addr,
		pool:      p,
		bus:       bus,
		log:       logger.Default,
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// SetTaskDelay は /api/multiply で実行する計算の所要時間を設定する
func (s *Server) SetTaskDelay(d time.Duration) {
	s.taskDelay = d
}

// SetLogger はロガーを設定する
func (s *Server) SetLogger(l *logger.Logger) {
	if l != nil {
		s.log = l
	}
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/api/multiply", s.handleMultiply)

	// WebSocket
	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	return mux
}

// Start はサーバーを開始する。ctx が終了するとサーバーを停止する
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go s.forwardEvents(ctx)
	go s.broadcastLoop(ctx)

	s.log.Info("api", "API Server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, s.pool.Stats())
}

// MetricsResponse はメトリクスレスポンス
type MetricsResponse struct {
	TotalTasks     uint64  `json:"total_tasks"`
	CompletedTasks uint64  `json:"completed_tasks"`
	FailedTasks    uint64  `json:"failed_tasks"`
	Throughput     float64 `json:"throughput"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
	P99LatencyMs   float64 `json:"p99_latency_ms"`
	ErrorRate      float64 `json:"error_rate"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.pool.Metrics().Snapshot()
	s.writeJSON(w, http.StatusOK, MetricsResponse{
		TotalTasks:     snap.TotalTasks,
		CompletedTasks: snap.CompletedTasks,
		FailedTasks:    snap.FailedTasks,
		Throughput:     snap.OverallThroughput,
		AvgLatencyMs:   float64(snap.AverageLatency) / float64(time.Millisecond),
		P99LatencyMs:   float64(snap.P99Latency) / float64(time.Millisecond),
		ErrorRate:      snap.ErrorRate,
	})
}

// MultiplyRequest は乗算リクエスト
type MultiplyRequest struct {
	A int `json:"a"`
	B int `json:"b"`
}

// MultiplyResponse は乗算レスポンス
type MultiplyResponse struct {
	A      int `json:"a"`
	B      int `json:"b"`
	Result int `json:"result"`
}

// ErrorResponse はエラーレスポンス
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleMultiply(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MultiplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	delay := s.taskDelay
	fut, err := pool.Submit(s.pool, func() (int, error) {
		return workload.Multiply(delay, req.A, req.B), nil
	})
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}

	// クライアント切断時は待ち合わせだけをやめる（タスクは実行される）
	select {
	case <-fut.Done():
	case <-r.Context().Done():
		return
	}

	v, err := fut.Await()
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, MultiplyResponse{A: req.A, B: req.B, Result: v})
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

// ClientCount は接続中のWebSocketクライアント数を返す
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wsClients)
}

func (s *Server) broadcast(data any) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// forwardEvents はイベントバスのイベントをWebSocketクライアントへ転送する
func (s *Server) forwardEvents(ctx context.Context) {
	if s.bus == nil {
		return
	}

	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(map[string]any{
				"type":  "event",
				"event": event,
			})
		}
	}
}

// broadcastLoop は定期的にプールの状態を配信する
func (s *Server) broadcastLoop(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.broadcast(map[string]any{
				"type":   "status",
				"status": s.pool.Stats(),
			})
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("api", "Failed to encode JSON: %v", err)
	}
}
