// Package api exposes a board engine over HTTP.
//
// The engine is single-threaded by contract, so the server serializes every
// request that touches it behind one mutex. Handlers exchange JSON; errors
// carry the machine-readable codes from pkg/errors so clients can branch on
// them without parsing messages.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kciter/pegboard-sub000/pkg/board"
	"github.com/kciter/pegboard-sub000/pkg/engine"
	"github.com/kciter/pegboard-sub000/pkg/errors"
	"github.com/kciter/pegboard-sub000/pkg/grid"
	"github.com/kciter/pegboard-sub000/pkg/pack"
	"github.com/kciter/pegboard-sub000/pkg/store"
)

// eventBufferSize caps the in-memory event log served by GET /events.
const eventBufferSize = 256

// Server wires an engine and a snapshot store into a chi router.
type Server struct {
	mu     sync.Mutex
	eng    *engine.Engine
	store  store.Store
	logger *log.Logger
	router chi.Router

	events   []engine.Event
	seq      uint64 // total events observed, including evicted ones
	savedSeq uint64 // seq at the last SaveBoard
}

// NewServer creates a server around eng. Snapshots are persisted through st;
// pass store.NewNullStore() to disable persistence. A nil logger falls back
// to log.Default().
func NewServer(eng *engine.Engine, st store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{eng: eng, store: st, logger: logger}

	// Handlers hold s.mu for every engine call, so the subscription fires
	// on a locked stack and needs no locking of its own.
	eng.Subscribe("*", s.recordEvent)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.handleHealth)

	r.Route("/board", func(r chi.Router) {
		r.Get("/", s.handleExport)
		r.Put("/", s.handleImport)
		r.Get("/grid", s.handleGetGrid)
		r.Put("/grid", s.handleSetGrid)
		r.Get("/history", s.handleHistory)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
		r.Post("/arrange", s.handleArrange)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleAddItem)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetItem)
				r.Delete("/", s.handleRemoveItem)
				r.Patch("/", s.handleUpdateItem)
				r.Post("/move", s.handleMoveItem)
				r.Post("/resize", s.handleResizeItem)
				r.Post("/duplicate", s.handleDuplicateItem)
				r.Post("/z", s.handleZOrder)
			})
		})
	})

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Put("/{key}", s.handleSaveSnapshot)
		r.Get("/{key}", s.handleGetSnapshot)
		r.Delete("/{key}", s.handleDeleteSnapshot)
		r.Post("/{key}/restore", s.handleRestoreSnapshot)
	})

	r.Get("/events", s.handleEvents)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Microsecond),
		)
	})
}

// SaveBoard persists the current board under key, skipping the write when
// nothing changed since the last call. The serve command's autosave loop
// drives it.
func (s *Server) SaveBoard(ctx context.Context, key string) error {
	s.mu.Lock()
	if s.seq == s.savedSeq {
		s.mu.Unlock()
		return nil
	}
	seq := s.seq
	snap := s.eng.Export()
	s.mu.Unlock()

	if err := s.store.Save(ctx, key, snap); err != nil {
		return err
	}

	s.mu.Lock()
	if seq > s.savedSeq {
		s.savedSeq = seq
	}
	s.mu.Unlock()
	s.logger.Debug("board saved", "key", key, "items", len(snap.Items))
	return nil
}

func (s *Server) recordEvent(ev engine.Event) {
	s.seq++
	s.events = append(s.events, ev)
	if len(s.events) > eventBufferSize {
		s.events = s.events[len(s.events)-eventBufferSize:]
	}
}

// =============================================================================
// JSON plumbing
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps an error code onto an HTTP status and emits the standard
// error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGrid, errors.ErrCodeInvalidItem,
		errors.ErrCodeInvalidStrategy, errors.ErrCodeInvalidSnapshot, errors.ErrCodeUnsupported:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeItemNotFound, errors.ErrCodeExtensionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidPlacement, errors.ErrCodeNoAvailablePosition, errors.ErrCodeLocked:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: err.Error()}})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.eng.Export()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap board.Snapshot
	if !decodeBody(w, r, &snap) {
		return
	}
	s.mu.Lock()
	err := s.eng.Import(snap)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"items": len(snap.Items)})
}

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cfg := s.eng.GridConfig()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSetGrid(w http.ResponseWriter, r *http.Request) {
	var cfg grid.Config
	if !decodeBody(w, r, &cfg) {
		return
	}
	s.mu.Lock()
	err := s.eng.SetGridConfig(cfg)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := struct {
		Labels  []string `json:"labels"`
		CanUndo bool     `json:"can_undo"`
		CanRedo bool     `json:"can_redo"`
	}{s.eng.History(), s.eng.CanUndo(), s.eng.CanRedo()}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok := s.eng.Undo()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ok := s.eng.Redo()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (s *Server) handleArrange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strategy pack.Strategy `json:"strategy"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	err := s.eng.AutoArrange(req.Strategy)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	s.handleExport(w, r)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.eng.Items()
	s.mu.Unlock()
	if items == nil {
		items = []board.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var spec board.Item
	if !decodeBody(w, r, &spec) {
		return
	}
	s.mu.Lock()
	id, err := s.eng.AddItem(spec)
	var it board.Item
	if err == nil {
		it, _ = s.eng.Item(id)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	it, ok := s.eng.Item(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, errors.New(errors.ErrCodeItemNotFound, "item %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	err := s.eng.RemoveItem(id)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var up engine.ItemUpdate
	if !decodeBody(w, r, &up) {
		return
	}
	s.mu.Lock()
	err := s.eng.UpdateItem(id, up)
	var it board.Item
	if err == nil {
		it, _ = s.eng.Item(id)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var pos grid.Position
	if !decodeBody(w, r, &pos) {
		return
	}
	s.mu.Lock()
	err := s.eng.MoveItem(id, pos)
	var it board.Item
	if err == nil {
		it, _ = s.eng.Item(id)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleResizeItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var size grid.Size
	if !decodeBody(w, r, &size) {
		return
	}
	s.mu.Lock()
	err := s.eng.ResizeItem(id, size)
	var it board.Item
	if err == nil {
		it, _ = s.eng.Item(id)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDuplicateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	newID, err := s.eng.DuplicateItem(id)
	var it board.Item
	if err == nil {
		it, _ = s.eng.Item(newID)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleZOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Op string `json:"op"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	_, exists := s.eng.Item(id)
	var changed bool
	var opErr error
	if exists {
		switch req.Op {
		case "front":
			changed = s.eng.BringToFront(id)
		case "back":
			changed = s.eng.SendToBack(id)
		case "forward":
			changed = s.eng.BringForward(id)
		case "backward":
			changed = s.eng.SendBackward(id)
		default:
			opErr = errors.New(errors.ErrCodeInvalidInput, "unknown z-order op %q", req.Op)
		}
	}
	s.mu.Unlock()

	if !exists {
		writeError(w, errors.New(errors.ErrCodeItemNotFound, "item %s not found", id))
		return
	}
	if opErr != nil {
		writeError(w, opErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

// =============================================================================
// Snapshot persistence
// =============================================================================

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	keys, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	s.mu.Lock()
	snap := s.eng.Export()
	s.mu.Unlock()
	if err := s.store.Save(r.Context(), key, snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "items": len(snap.Items)})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	snap, found, err := s.store.Load(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, errors.New(errors.ErrCodeNotFound, "snapshot %s not found", key))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := s.store.Delete(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	snap, found, err := s.store.Load(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, errors.New(errors.ErrCodeNotFound, "snapshot %s not found", key))
		return
	}
	s.mu.Lock()
	err = s.eng.Import(snap)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "items": len(snap.Items)})
}

// handleEvents returns the most recent engine events. The "since" query
// parameter skips events already seen: pass the "seq" value from the
// previous response.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	seq := s.seq
	buffered := uint64(len(s.events))
	events := s.events
	if since := r.URL.Query().Get("since"); since != "" {
		n, err := strconv.ParseUint(since, 10, 64)
		if err != nil {
			s.mu.Unlock()
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid since value %q", since))
			return
		}
		if n >= seq {
			events = nil
		} else if seq-n < buffered {
			events = events[buffered-(seq-n):]
		}
	}
	out := make([]engine.Event, len(events))
	copy(out, events)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, struct {
		Seq    uint64         `json:"seq"`
		Events []engine.Event `json:"events"`
	}{seq, out})
}
