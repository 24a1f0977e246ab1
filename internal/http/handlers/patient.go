package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carebridge/portal/internal/appointments"
	"github.com/carebridge/portal/internal/booking"
	"github.com/carebridge/portal/internal/directory"
	"github.com/carebridge/portal/internal/http/middleware"
	"github.com/carebridge/portal/internal/session"
	"github.com/carebridge/portal/internal/upstream"
	"github.com/carebridge/portal/pkg/logging"
)

const patientListView = "patient_appointments"

// cachedList is the per-session snapshot of the last rendered appointment
// list: the page plus the filters it was fetched under. Status updates
// patch this snapshot in place instead of refetching.
type cachedList struct {
	Filter string            `json:"filter"`
	Date   string            `json:"date,omitempty"`
	List   appointments.Page `json:"list"`
}

// PatientHandler serves the doctor directory, the booking flow and the
// patient's appointment list.
type PatientHandler struct {
	client   *upstream.Client
	sessions *session.Manager
	cache    session.Cache
	render   *Renderer
	logger   *logging.Logger
	pageSize int
	cacheTTL time.Duration
	now      func() time.Time
}

func NewPatientHandler(client *upstream.Client, sessions *session.Manager, cache session.Cache, render *Renderer, logger *logging.Logger, pageSize int, cacheTTL time.Duration) *PatientHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &PatientHandler{
		client:   client,
		sessions: sessions,
		cache:    cache,
		render:   render,
		logger:   logger,
		pageSize: pageSize,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

type patientDashboardView struct {
	baseView
	Doctors         []upstream.Doctor
	Specializations []string
	Filter          directory.Filter
	Page            int
	PrevPage        int
	NextPage        int
	TotalPages      int
	Booking         booking.Flow
	Slots           []string
	Booked          bool
}

type patientListViewModel struct {
	baseView
	List   appointments.Page
	Counts appointments.Counts
	Active string
	Error  string
}

type cancelConfirmView struct {
	baseView
	Item appointments.Appointment
}

// Dashboard renders the doctor directory with search and specialization
// filters applied client-side to the fetched page. ?book=<doctorID> opens
// the booking dialog for that doctor; ?booked=1 shows the success banner.
func (h *PatientHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	q := r.URL.Query()
	page := pageParam(q.Get("page"))
	filter := directory.Filter{
		SearchTerm:     q.Get("search"),
		Specialization: q.Get("specialization"),
	}

	doctors, specializations, err := h.fetchDirectory(r.Context(), sess.Token, page)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			h.unauthorized(w, r)
			return
		}
		h.logger.Error("directory fetch failed", "error", err)
	}

	flow := booking.NewFlow()
	if id := q.Get("book"); id != "" {
		if doctor, found := findDoctor(doctors, id); found {
			flow.Open(doctor)
		}
	}

	h.render.Render(w, "patient_dashboard.html", http.StatusOK, patientDashboardView{
		baseView:        shell(r, "Find Doctors"),
		Doctors:         filter.Apply(doctors),
		Specializations: specializations,
		Filter:          filter,
		Page:            page,
		PrevPage:        page - 1,
		NextPage:        page + 1,
		TotalPages:      totalDirectoryPages(len(doctors), page, h.pageSize),
		Booking:         flow,
		Slots:           booking.TimeSlots,
		Booked:          q.Get("booked") == "1",
	})
}

// Book handles the booking dialog submission. Validation failures re-render
// the dashboard with the dialog open and the draft preserved; an upstream
// rejection (say, a slot taken in the meantime) keeps the dialog open with
// the server's message.
func (h *PatientHandler) Book(w http.ResponseWriter, r *http.Request) {
	sess, sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	doctor := upstream.Doctor{
		ID:             r.PostFormValue("doctor_id"),
		Name:           r.PostFormValue("doctor_name"),
		Specialization: r.PostFormValue("doctor_specialization"),
	}
	flow := booking.NewFlow()
	flow.Open(doctor)
	flow.Fill(r.PostFormValue("date"), r.PostFormValue("time"), r.PostFormValue("reason"))

	when, valid := flow.Submit(h.now())
	if valid {
		err := h.client.CreateAppointment(r.Context(), sess.Token, upstream.CreateAppointmentRequest{
			DoctorID: doctor.ID,
			Date:     when,
			Reason:   strings.TrimSpace(flow.Draft.Reason),
		})
		switch {
		case err == nil:
			// The cached list no longer reflects upstream truth.
			h.dropList(r.Context(), sid)
			http.Redirect(w, r, "/patient/dashboard?booked=1", http.StatusSeeOther)
			return
		case upstream.IsUnauthorized(err):
			h.unauthorized(w, r)
			return
		default:
			h.logger.Error("booking failed", "doctor_id", doctor.ID, "error", err)
			flow.Fail(bookingFailureMessage(err))
		}
	}

	doctors, specializations, err := h.fetchDirectory(r.Context(), sess.Token, 1)
	if err != nil && upstream.IsUnauthorized(err) {
		h.unauthorized(w, r)
		return
	}
	h.render.Render(w, "patient_dashboard.html", http.StatusUnprocessableEntity, patientDashboardView{
		baseView:        shell(r, "Find Doctors"),
		Doctors:         doctors,
		Specializations: specializations,
		Page:            1,
		TotalPages:      totalDirectoryPages(len(doctors), 1, h.pageSize),
		Booking:         flow,
		Slots:           booking.TimeSlots,
	})
}

// Appointments renders the patient's list with per-status filter tabs.
// The rendered page is snapshotted per session so a cancellation can patch
// it in place; ?patched=1 serves that snapshot instead of refetching.
func (h *PatientHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	sess, sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	q := r.URL.Query()
	active, wire := patientStatusParam(q.Get("status"))

	if q.Get("patched") == "1" {
		if snap, found := h.loadList(r.Context(), sid); found && snap.Filter == active {
			h.renderPatientList(w, r, snap.List, active, q.Get("error"))
			return
		}
	}

	rows, err := h.client.PatientAppointments(r.Context(), sess.Token, wire)
	if err != nil {
		if upstream.IsUnauthorized(err) {
			h.unauthorized(w, r)
			return
		}
		h.logger.Error("appointment list fetch failed", "error", err)
		h.renderPatientList(w, r, appointments.EmptyPage(), active, "Could not load your appointments, please try again")
		return
	}

	page := appointments.FromPatientView(rows)
	h.saveList(r.Context(), sid, cachedList{Filter: active, List: page})
	h.renderPatientList(w, r, page, active, q.Get("error"))
}

// CancelConfirm shows the confirmation page for one appointment.
func (h *PatientHandler) CancelConfirm(w http.ResponseWriter, r *http.Request) {
	sess, sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id := chi.URLParam(r, "id")

	item, found := h.findListItem(r.Context(), sid, id)
	if !found {
		rows, err := h.client.PatientAppointments(r.Context(), sess.Token, "")
		if err != nil {
			if upstream.IsUnauthorized(err) {
				h.unauthorized(w, r)
				return
			}
			http.Redirect(w, r, "/patient/appointments", http.StatusSeeOther)
			return
		}
		page := appointments.FromPatientView(rows)
		h.saveList(r.Context(), sid, cachedList{List: page})
		item, found = page.Find(id)
	}
	if !found || item.Status.Terminal() {
		http.Redirect(w, r, "/patient/appointments", http.StatusSeeOther)
		return
	}

	h.render.Render(w, "cancel_confirm.html", http.StatusOK, cancelConfirmView{
		baseView: shell(r, "Cancel Appointment"),
		Item:     item,
	})
}

// Cancel cancels the appointment upstream, patches the cached list so the
// row flips to cancelled without a refetch, and returns to the list. A
// failed cancel drops the snapshot and surfaces an error banner, so the
// next render shows upstream truth.
func (h *PatientHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, sid, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.client.CancelAppointment(r.Context(), sess.Token, id); err != nil {
		if upstream.IsUnauthorized(err) {
			h.unauthorized(w, r)
			return
		}
		h.logger.Error("cancel failed", "appointment_id", id, "error", err)
		h.dropList(r.Context(), sid)
		http.Redirect(w, r, "/patient/appointments?error="+url.QueryEscape("Could not cancel the appointment, please try again"), http.StatusSeeOther)
		return
	}

	target := "/patient/appointments"
	if snap, found := h.loadList(r.Context(), sid); found {
		if snap.List.PatchStatus(id, appointments.StatusCancelled) {
			h.saveList(r.Context(), sid, snap)
			v := url.Values{}
			if snap.Filter != "" {
				v.Set("status", snap.Filter)
			}
			v.Set("patched", "1")
			target += "?" + v.Encode()
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *PatientHandler) renderPatientList(w http.ResponseWriter, r *http.Request, page appointments.Page, active, banner string) {
	h.render.Render(w, "patient_appointments.html", http.StatusOK, patientListViewModel{
		baseView: shell(r, "My Appointments"),
		List:     page,
		Counts:   page.Counts(),
		Active:   active,
		Error:    banner,
	})
}

// fetchDirectory pulls the doctor page and the specialization list in
// parallel. A failed specialization fetch degrades to an empty dropdown
// rather than failing the page.
func (h *PatientHandler) fetchDirectory(ctx context.Context, token string, page int) ([]upstream.Doctor, []string, error) {
	var (
		wg              sync.WaitGroup
		doctors         []upstream.Doctor
		specializations []string
		doctorsErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		doctors, doctorsErr = h.client.ListDoctors(ctx, token, page, h.pageSize)
	}()
	go func() {
		defer wg.Done()
		var err error
		specializations, err = h.client.ListSpecializations(ctx)
		if err != nil {
			h.logger.Warn("specialization fetch failed", "error", err)
		}
	}()
	wg.Wait()
	return doctors, specializations, doctorsErr
}

func (h *PatientHandler) loadList(ctx context.Context, sessionID string) (cachedList, bool) {
	data, err := h.cache.GetPage(ctx, sessionID, patientListView)
	if err != nil {
		return cachedList{}, false
	}
	var snap cachedList
	if err := json.Unmarshal(data, &snap); err != nil {
		return cachedList{}, false
	}
	return snap, true
}

func (h *PatientHandler) saveList(ctx context.Context, sessionID string, snap cachedList) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := h.cache.PutPage(ctx, sessionID, patientListView, data, h.cacheTTL); err != nil {
		h.logger.Warn("list snapshot save failed", "error", err)
	}
}

func (h *PatientHandler) dropList(ctx context.Context, sessionID string) {
	if err := h.cache.DropPage(ctx, sessionID, patientListView); err != nil {
		h.logger.Warn("list snapshot drop failed", "error", err)
	}
}

func (h *PatientHandler) findListItem(ctx context.Context, sessionID, id string) (appointments.Appointment, bool) {
	snap, found := h.loadList(ctx, sessionID)
	if !found {
		return appointments.Appointment{}, false
	}
	return snap.List.Find(id)
}

func (h *PatientHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func findDoctor(doctors []upstream.Doctor, id string) (upstream.Doctor, bool) {
	for _, d := range doctors {
		if d.ID == id {
			return d, true
		}
	}
	return upstream.Doctor{}, false
}

// patientStatusParam maps the tab value to the upstream's query spelling.
// Unknown values fall back to the All tab.
func patientStatusParam(raw string) (active, wire string) {
	status, ok := appointments.ParseStatus(raw)
	if raw == "" || !ok {
		return "", ""
	}
	return strings.ToLower(string(status)), status.PatientWire()
}

func pageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// totalDirectoryPages is a best-effort page count: the doctors endpoint
// reports no total, so a full page implies at least one more.
func totalDirectoryPages(fetched, page, pageSize int) int {
	if fetched >= pageSize {
		return page + 1
	}
	return page
}

func bookingFailureMessage(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Could not book the appointment, please try again"
}
