package importrun

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tally/internal/logger"
	"github.com/MrJamesThe3rd/tally/internal/pipeline"
	"github.com/MrJamesThe3rd/tally/internal/sanitize"
)

type Runner interface {
	ImportInbox(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)

func (f RunnerFunc) ImportInbox(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	return f(ctx, opts)
}

// Rules is the rule-set owner the handler reports on and resets.
type Rules interface {
	Diagnostics(ctx context.Context) ([]sanitize.Diagnostic, error)
	Reset()
}

// Handler triggers inbox imports. Only one import runs at a time; a second
// request while one is in flight gets 409.
type Handler struct {
	runner Runner
	rules  Rules
	opts   pipeline.Options

	running sync.Mutex
}

func NewHandler(runner Runner, rules Rules, opts pipeline.Options) *Handler {
	return &Handler{runner: runner, rules: rules, opts: opts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.run)
	r.Get("/rules", h.diagnostics)
	r.Post("/rules/reload", h.reload)
}

type diagnosticResponse struct {
	Rule    int    `json:"rule"`
	Target  string `json:"target"`
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if !h.running.TryLock() {
		http.Error(w, "an import is already running", http.StatusConflict)
		return
	}
	defer h.running.Unlock()

	res, err := h.runner.ImportInbox(r.Context(), h.opts)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("import failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *Handler) diagnostics(w http.ResponseWriter, r *http.Request) {
	diags, err := h.rules.Diagnostics(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := make([]diagnosticResponse, 0, len(diags))
	for _, d := range diags {
		resp = append(resp, diagnosticResponse{Rule: d.Rule, Target: d.Target, Pattern: d.Pattern, Message: d.Message})
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) reload(w http.ResponseWriter, r *http.Request) {
	h.rules.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to encode response")
	}
}
