package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/session"
	"github.com/leapstack-labs/horizon/internal/theme"
	"github.com/leapstack-labs/horizon/internal/ui/components"
	"github.com/starfederation/datastar-go/datastar"
)

// Cookie session keys.
const (
	CookieName = "horizon"
	sessionKey = "sid"
)

// ExportFilename is the download name of the filtered export.
const ExportFilename = "filtered.csv"

// Handlers provides HTTP handlers for the viewer feature.
type Handlers struct {
	manager      *session.Manager
	sessionStore sessions.Store
	vars         []theme.Var
	isDev        bool
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(manager *session.Manager, sessionStore sessions.Store, vars []theme.Var, isDev bool) *Handlers {
	return &Handlers{
		manager:      manager,
		sessionStore: sessionStore,
		vars:         vars,
		isDev:        isDev,
		logger:       manager.Config().Logger,
	}
}

// viewerSession resolves the caller's session from the cookie, opening a
// new one when needed. q seeds or updates the view state. It must run
// before anything is written to w.
func (h *Handlers) viewerSession(w http.ResponseWriter, r *http.Request, q url.Values) (*session.Session, error) {
	cookie, err := h.sessionStore.Get(r, CookieName)
	if err != nil {
		h.logger.Debug("discarding unreadable session cookie", "error", err)
	}
	if cookie == nil {
		cookie = sessions.NewSession(h.sessionStore, CookieName)
	}
	id, _ := cookie.Values[sessionKey].(string)

	sess, err := h.manager.Open(r.Context(), id, q)
	if err != nil {
		return nil, err
	}
	if sess.ID() != id {
		cookie.Values[sessionKey] = sess.ID()
		if err := cookie.Save(r, w); err != nil {
			h.logger.Warn("failed to save session cookie", "error", err)
		}
	}
	return sess, nil
}

// ViewerPage renders the full page with the current view server-side.
func (h *Handlers) ViewerPage(w http.ResponseWriter, r *http.Request) {
	sess, err := h.viewerSession(w, r, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	v := sess.Snapshot()
	page := components.Page(components.PageData{
		Title:   pageTitle(v),
		IsDev:   h.isDev,
		Vars:    h.vars,
		Signals: components.SignalsFor(v),
		Body:    components.Viewer(v),
	})
	if err := page.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ViewerUpdates is the long-lived SSE endpoint for the page. It sends the
// current view once, then again after every session change.
func (h *Handlers) ViewerUpdates(w http.ResponseWriter, r *http.Request) {
	sess, err := h.viewerSession(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	// Subscribe before the first send so no change falls in between.
	updates := sess.Subscribe()
	defer sess.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	v := sess.Snapshot()
	source := v.State.Source
	if err := sendView(sse, v, true); err != nil {
		_ = sse.ConsoleError(err)
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			v = sess.Snapshot()
			changed := v.State.Source != source
			source = v.State.Source
			if err := sendView(sse, v, changed); err != nil {
				_ = sse.ConsoleError(err)
			}
		}
	}
}

// sendView morphs the viewer, syncs the bound controls that the server may
// change, and rewrites the address bar to the state's URL. The csv input is
// only overwritten when syncSource is set.
func sendView(sse *datastar.ServerSentEventGenerator, v session.View, syncSource bool) error {
	if err := sse.PatchElementTempl(components.Viewer(v)); err != nil {
		return err
	}

	sig := components.SignalsFor(v)
	// search, and csv while the source is unchanged, are left alone so a
	// round trip never fights the user's typing.
	signals := map[string]any{
		"paging":      sig.Paging,
		"pageSize":    sig.PageSize,
		"autoRefresh": sig.AutoRefresh,
		"refreshSec":  sig.RefreshSec,
	}
	if syncSource {
		signals["csv"] = sig.CSV
	}
	if err := sse.MarshalAndPatchSignals(signals); err != nil {
		return err
	}

	query, err := json.Marshal("?" + components.Query(v.State))
	if err != nil {
		return err
	}
	return sse.ExecuteScript(fmt.Sprintf("history.replaceState(null, '', %s)", query))
}

// ActionSSE applies one named action to the caller's session. The view
// itself reaches the browser through ViewerUpdates.
func (h *Handlers) ActionSSE(w http.ResponseWriter, r *http.Request) {
	var signals components.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sess, err := h.viewerSession(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	name := chi.URLParam(r, "action")
	q := r.URL.Query()
	switch name {
	case actionReload:
		if err := sess.Reload(r.Context()); err != nil {
			h.logger.Debug("reload failed", "session", sess.ID(), "error", err)
		}
		datastar.NewSSE(w, r)
		return
	case actionCopy:
		sess.ReportCopy(q.Get("ok") == "1")
		datastar.NewSSE(w, r)
		return
	case actionPaletteClose:
		sse := datastar.NewSSE(w, r)
		if err := sse.PatchElementTempl(components.PaletteClosed()); err != nil {
			_ = sse.ConsoleError(err)
		}
		return
	}

	actions, err := buildActions(name, q, signals, sess.Snapshot())
	switch {
	case errors.Is(err, errUnknownAction):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Dispatch(actions...)

	sse := datastar.NewSSE(w, r)
	if name == "source" || name == "tag" {
		if err := sse.PatchElementTempl(components.PaletteClosed()); err != nil {
			_ = sse.ConsoleError(err)
		}
	}
}

// PaletteSSE renders the command palette for ?q= or the palette signal.
func (h *Handlers) PaletteSSE(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if !r.URL.Query().Has("q") {
		var signals components.Signals
		if err := datastar.ReadSignals(r, &signals); err == nil {
			query = signals.Palette
		}
	}

	sess, err := h.viewerSession(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(components.Palette(sess.Palette(query))); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ExportCSV downloads the rows in view as CSV.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, err := h.viewerSession(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	if err := sess.Export(w); err != nil {
		h.logger.Warn("export failed", "session", sess.ID(), "error", err)
	}
}

// Upload replaces the caller's grid with a posted CSV file. Rejections
// surface as the session error.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, loader.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid upload: %v", err), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid upload: %v", err), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	sess, err := h.viewerSession(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	if err := sess.Upload(header.Filename, file); err != nil {
		h.logger.Debug("upload rejected", "session", sess.ID(), "file", header.Filename, "error", err)
	}
	datastar.NewSSE(w, r)
}

func pageTitle(v session.View) string {
	if v.State.Source == "" {
		return "Telemetry"
	}
	return path.Base(v.State.Source)
}
