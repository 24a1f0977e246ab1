package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge/portal/internal/appointments"
	"github.com/carebridge/portal/internal/http/middleware"
	"github.com/carebridge/portal/internal/session"
	"github.com/carebridge/portal/internal/upstream"
	"github.com/carebridge/portal/pkg/logging"
)

const doctorListView = "doctor_appointments"

// DoctorHandler serves the doctor's schedule and its status transitions.
type DoctorHandler struct {
	client   *upstream.Client
	sessions *session.Manager
	cache    session.Cache
	render   *Renderer
	logger   *logging.Logger
	cacheTTL time.Duration
}

func NewDoctorHandler(client *upstream.Client, sessions *session.Manager, cache session.Cache, render *Renderer, logger *logging.Logger, cacheTTL time.Duration) *DoctorHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DoctorHandler{
		client:   client,
		sessions: sessions,
		cache:    cache,
		render:   render,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

type doctorDashboardView struct {
	baseView
	List     appointments.Page
	Counts   appointments.Counts
	Active   string
	Date     string
	PrevPage int
	NextPage int
}

type statusConfirmView struct {
	baseView
	Item    appointments.Appointment
	Target  string
	Heading string
	Action  string
}

// Dashboard renders the doctor's appointment list with status, date and
// page filters, all forwarded to the upstream query. ?patched=1 serves the
// per-session snapshot a status update just patched.
func (h *DoctorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	q := r.URL.Query()
	active, wire := doctorStatusParam(q.Get("status"))
	date := dateParam(q.Get("date"))
	page := pageParam(q.Get("page"))

	if q.Get("patched") == "1" {
		if snap, found := h.loadList(r.Context(), sid); found && snap.Filter == active && snap.Date == date {
			h.renderDashboard(w, r, snap.List, active, date)
			return
		}
	}

	rows, totalPages, err := h.client.DoctorAppointments(r.Context(), sess.Token, upstream.DoctorListQuery{
		Status: wire,
		Date:   date,
		Page:   page,
	})
	if err != nil {
		if upstream.IsUnauthorized(err) {
			h.unauthorized(w, r)
			return
		}
		h.logger.Error("schedule fetch failed", "error", err)
		h.renderDashboard(w, r, appointments.EmptyPage(), active, date)
		return
	}

	list := appointments.FromDoctorView(rows, page, totalPages)
	h.saveList(r.Context(), sid, cachedList{Filter: active, Date: date, List: list})
	h.renderDashboard(w, r, list, active, date)
}

// StatusConfirm shows the confirmation page for completing or cancelling
// one appointment. ?to= picks the transition.
func (h *DoctorHandler) StatusConfirm(w http.ResponseWriter, r *http.Request) {
	_, sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id := chi.URLParam(r, "id")

	target, ok := appointments.ParseStatus(r.URL.Query().Get("to"))
	if !ok || !target.Terminal() {
		http.Redirect(w, r, "/doctor/dashboard", http.StatusSeeOther)
		return
	}

	snap, found := h.loadList(r.Context(), sid)
	if !found {
		http.Redirect(w, r, "/doctor/dashboard", http.StatusSeeOther)
		return
	}
	item, found := snap.List.Find(id)
	if !found || item.Status.Terminal() {
		http.Redirect(w, r, "/doctor/dashboard", http.StatusSeeOther)
		return
	}

	view := statusConfirmView{
		baseView: shell(r, "Confirm"),
		Item:     item,
		Target:   target.DoctorWire(),
	}
	if target == appointments.StatusCompleted {
		view.Heading = "Mark this appointment completed?"
		view.Action = "Mark completed"
	} else {
		view.Heading = "Cancel this appointment?"
		view.Action = "Cancel appointment"
	}
	h.render.Render(w, "status_confirm.html", http.StatusOK, view)
}

// StatusUpdate applies the transition upstream and patches the snapshot so
// the list re-renders without a refetch. An upstream failure is logged and
// the snapshot dropped; the redirect then refetches upstream truth, so the
// row simply keeps its old status.
func (h *DoctorHandler) StatusUpdate(w http.ResponseWriter, r *http.Request) {
	sess, sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")

	target, okStatus := appointments.ParseStatus(r.PostFormValue("status"))
	if !okStatus || !target.Terminal() {
		http.Redirect(w, r, "/doctor/dashboard", http.StatusSeeOther)
		return
	}

	if err := h.client.UpdateAppointmentStatus(r.Context(), sess.Token, id, target.DoctorWire()); err != nil {
		if upstream.IsUnauthorized(err) {
			h.unauthorized(w, r)
			return
		}
		h.logger.Error("status update failed", "appointment_id", id, "status", target, "error", err)
		h.dropList(r.Context(), sid)
		http.Redirect(w, r, "/doctor/dashboard", http.StatusSeeOther)
		return
	}

	targetURL := "/doctor/dashboard"
	if snap, found := h.loadList(r.Context(), sid); found {
		if snap.List.PatchStatus(id, target) {
			h.saveList(r.Context(), sid, snap)
			v := url.Values{}
			if snap.Filter != "" {
				v.Set("status", snap.Filter)
			}
			if snap.Date != "" {
				v.Set("date", snap.Date)
			}
			v.Set("patched", "1")
			targetURL += "?" + v.Encode()
		}
	}
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

func (h *DoctorHandler) renderDashboard(w http.ResponseWriter, r *http.Request, list appointments.Page, active, date string) {
	h.render.Render(w, "doctor_dashboard.html", http.StatusOK, doctorDashboardView{
		baseView: shell(r, "Your Schedule"),
		List:     list,
		Counts:   list.Counts(),
		Active:   active,
		Date:     date,
		PrevPage: list.Number - 1,
		NextPage: list.Number + 1,
	})
}

func (h *DoctorHandler) loadList(ctx context.Context, sessionID string) (cachedList, bool) {
	data, err := h.cache.GetPage(ctx, sessionID, doctorListView)
	if err != nil {
		return cachedList{}, false
	}
	var snap cachedList
	if err := json.Unmarshal(data, &snap); err != nil {
		return cachedList{}, false
	}
	return snap, true
}

func (h *DoctorHandler) saveList(ctx context.Context, sessionID string, snap cachedList) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := h.cache.PutPage(ctx, sessionID, doctorListView, data, h.cacheTTL); err != nil {
		h.logger.Warn("list snapshot save failed", "error", err)
	}
}

func (h *DoctorHandler) dropList(ctx context.Context, sessionID string) {
	if err := h.cache.DropPage(ctx, sessionID, doctorListView); err != nil {
		h.logger.Warn("list snapshot drop failed", "error", err)
	}
}

func (h *DoctorHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// doctorStatusParam maps the filter value to the doctor endpoint's query
// spelling. Unknown values clear the filter.
func doctorStatusParam(raw string) (active, wire string) {
	status, ok := appointments.ParseStatus(raw)
	if raw == "" || !ok {
		return "", ""
	}
	return strings.ToLower(string(status)), status.DoctorWire()
}

func dateParam(raw string) string {
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return ""
	}
	return raw
}
