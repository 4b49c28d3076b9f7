package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/poiesic/tributary/backfill"
	"github.com/poiesic/tributary/core"
	"github.com/poiesic/tributary/search"
	"github.com/poiesic/tributary/storage"
	"github.com/poiesic/tributary/vector"
)

const (
	// dateLayout is the wire format for job windows and search bounds.
	dateLayout = "2006-01-02"

	// staleAfter marks a source's sync mark stale on the status endpoint.
	staleAfter = 24 * time.Hour
)

// Handlers serves the HTTP API. All responses are JSON.
type Handlers struct {
	tasks       *TaskRegistry
	searcher    *search.Searcher
	checkpoints storage.CheckpointRepository
	syncs       storage.SyncStatusRepository
	store       vector.Store
	logger      *slog.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(
	tasks *TaskRegistry,
	searcher *search.Searcher,
	checkpoints storage.CheckpointRepository,
	syncs storage.SyncStatusRepository,
	store vector.Store,
) (*Handlers, error) {
	if tasks == nil {
		return nil, ErrTasksRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if checkpoints == nil {
		return nil, ErrCheckpointsRequired
	}
	if syncs == nil {
		return nil, ErrSyncStatusRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	return &Handlers{
		tasks:       tasks,
		searcher:    searcher,
		checkpoints: checkpoints,
		syncs:       syncs,
		store:       store,
		logger:      slog.Default().With("component", "server"),
	}, nil
}

// writeError logs the internal error and returns a sanitized JSON
// error to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "err", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encoding failed", "err", err)
	}
}

// jobRequest is the POST /api/jobs body. A window is given either as
// days_back from now or as an inclusive from_date/to_date pair.
type jobRequest struct {
	Source   string `json:"source"`
	DaysBack int    `json:"days_back,omitempty"`
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
	BatchID  string `json:"batch_id,omitempty"`
}

func (req jobRequest) toJob(now time.Time) (backfill.Job, error) {
	job := backfill.Job{
		Source:  core.Source(req.Source),
		BatchID: req.BatchID,
	}

	hasDates := req.FromDate != "" || req.ToDate != ""
	switch {
	case req.DaysBack < 0:
		return job, errors.New("days_back must be positive")
	case req.DaysBack > 0 && hasDates:
		return job, errors.New("specify days_back or an explicit window, not both")
	case req.DaysBack > 0:
		job.To = now
		job.From = now.AddDate(0, 0, -req.DaysBack)
	case req.FromDate != "" && req.ToDate != "":
		from, err := time.Parse(dateLayout, req.FromDate)
		if err != nil {
			return job, fmt.Errorf("invalid from_date: %q", req.FromDate)
		}
		to, err := time.Parse(dateLayout, req.ToDate)
		if err != nil {
			return job, fmt.Errorf("invalid to_date: %q", req.ToDate)
		}
		job.From = from
		// The end date is inclusive; the window runs to its midnight.
		job.To = to.AddDate(0, 0, 1)
	default:
		return job, errors.New("specify days_back or both from_date and to_date")
	}

	if job.BatchID == "" {
		job.BatchID = uuid.NewString()
	}
	return job, job.Validate()
}

// CreateJob validates the request synchronously, then hands the job to
// the worker pool and answers 202 with the task id. Job failures are
// visible only through GET /api/jobs/{taskID}.
func (h *Handlers) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	job, err := req.toJob(time.Now().UTC())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	taskID, err := h.tasks.Submit(job)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "worker pool saturated", err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": taskID,
		"status":  string(TaskRunning),
	})
}

// GetJob returns the state of a submitted job.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	task, ok := h.tasks.Get(taskID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown task", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

// ListCheckpoints returns stored checkpoints, optionally filtered by
// the source query parameter.
func (h *Handlers) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	src := core.Source(r.URL.Query().Get("source"))
	if src != "" && !slices.Contains(core.Sources, src) {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source: %q", src), nil)
		return
	}

	checkpoints, err := h.checkpoints.ListCheckpoints(r.Context(), src)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list checkpoints", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"checkpoints": checkpoints,
		"count":       len(checkpoints),
	})
}

type syncEntry struct {
	LastSyncAt time.Time `json:"last_sync_at"`
	Stale      bool      `json:"stale"`
}

// SyncStatus returns the last successful sync per source, flagging
// sources whose mark is older than a day.
func (h *Handlers) SyncStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.syncs.ListSyncStatuses(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to load sync status", err)
		return
	}

	out := make(map[string]syncEntry, len(statuses))
	for _, status := range statuses {
		out[string(status.Source)] = syncEntry{
			LastSyncAt: status.LastSyncAt,
			Stale:      status.Stale(staleAfter),
		}
	}
	h.writeJSON(w, http.StatusOK, out)
}

// searchRequest is the POST /api/search body. Dates are inclusive.
type searchRequest struct {
	Query     string   `json:"query"`
	Sources   []string `json:"sources,omitempty"`
	Kinds     []string `json:"kinds,omitempty"`
	Project   string   `json:"project,omitempty"`
	From      string   `json:"from,omitempty"`
	To        string   `json:"to,omitempty"`
	TopK      int      `json:"top_k,omitempty"`
	Principal string   `json:"principal,omitempty"`
}

func (req searchRequest) toOptions() (search.Options, error) {
	opts := search.Options{
		Project:   req.Project,
		Principal: req.Principal,
		Limit:     req.TopK,
	}

	for _, raw := range req.Sources {
		src := core.Source(raw)
		if !slices.Contains(core.Sources, src) {
			return opts, fmt.Errorf("unknown source: %q", raw)
		}
		opts.Sources = append(opts.Sources, src)
	}
	for _, raw := range req.Kinds {
		kind := core.Kind(raw)
		if core.SourceOf(kind) == "" {
			return opts, fmt.Errorf("unknown kind: %q", raw)
		}
		opts.Kinds = append(opts.Kinds, kind)
	}

	if req.From != "" {
		from, err := time.Parse(dateLayout, req.From)
		if err != nil {
			return opts, fmt.Errorf("invalid from: %q", req.From)
		}
		opts.Since = from
	}
	if req.To != "" {
		to, err := time.Parse(dateLayout, req.To)
		if err != nil {
			return opts, fmt.Errorf("invalid to: %q", req.To)
		}
		opts.Until = to.AddDate(0, 0, 1)
	}
	return opts, nil
}

// Search answers a query against the document store.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	opts, err := req.toOptions()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	results, err := h.searcher.Search(r.Context(), req.Query, opts)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			h.writeError(w, http.StatusBadRequest, "query text is required", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "search failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

// Health reports store reachability and corpus size.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	count, err := h.store.Count(r.Context())
	if err != nil {
		status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"documents": count,
	})
}
