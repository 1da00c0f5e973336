package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/roach88/hexwar/internal/persist"
)

// MaxBodyBytes bounds an uploaded batch document.
const MaxBodyBytes = 4 << 20

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server serves a persist.Service.
type Server struct {
	svc       persist.Service
	validator *persist.Validator
	mux       *http.ServeMux
}

// NewServer creates a server storing batches in svc. Documents are checked
// with v before storage.
func NewServer(svc persist.Service, v *persist.Validator) *Server {
	s := &Server{svc: svc, validator: v, mux: http.NewServeMux()}
	s.mux.HandleFunc("PUT /games/{game}/batches/{count}", s.handlePut)
	s.mux.HandleFunc("GET /games/{game}/batches", s.handleList)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe runs the HTTP server on addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	slog.Info("persistence service listening", "addr", addr)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	game := r.PathValue("game")
	count, err := strconv.ParseInt(r.PathValue("count"), 10, 64)
	if err != nil || count < 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid batch count %q", r.PathValue("count")))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	b, err := persist.CodecFor(r.Header.Get("Content-Type")).Unmarshal(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if b.Game != game || b.Count != count {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("document is %q/%d, path is %q/%d", b.Game, b.Count, game, count))
		return
	}
	if err := b.CheckVersion(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.validator.ValidateBatch(b); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.PutBatch(r.Context(), b); err != nil {
		slog.Error("store batch failed", "game", game, "count", count, "error", err)
		writeError(w, http.StatusInternalServerError, "store batch failed")
		return
	}

	slog.Debug("batch stored", "game", game, "count", count, "elements", len(b.Elements))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	game := r.PathValue("game")
	from := int64(1)
	if raw := r.URL.Query().Get("from"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid from %q", raw))
			return
		}
		from = n
	}

	batches, err := s.svc.Batches(r.Context(), game, from)
	if err != nil {
		slog.Error("list batches failed", "game", game, "from", from, "error", err)
		writeError(w, http.StatusInternalServerError, "list batches failed")
		return
	}
	if batches == nil {
		batches = []persist.Batch{}
	}

	codec := persist.CodecFor(r.Header.Get("Accept"))
	data, err := codec.MarshalList(batches)
	if err != nil {
		slog.Error("encode batches failed", "game", game, "error", err)
		writeError(w, http.StatusInternalServerError, "encode batches failed")
		return
	}

	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", persist.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
