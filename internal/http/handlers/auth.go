package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/carebridge/portal/internal/auth"
	"github.com/carebridge/portal/internal/http/middleware"
	"github.com/carebridge/portal/internal/session"
	"github.com/carebridge/portal/internal/upstream"
	"github.com/carebridge/portal/pkg/logging"
)

// AuthHandler serves the login and registration pages and owns session
// creation and teardown.
type AuthHandler struct {
	client   *upstream.Client
	sessions *session.Manager
	render   *Renderer
	logger   *logging.Logger
}

func NewAuthHandler(client *upstream.Client, sessions *session.Manager, render *Renderer, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{client: client, sessions: sessions, render: render, logger: logger}
}

type loginView struct {
	baseView
	Form auth.LoginForm
	Flow auth.Flow
}

type registerView struct {
	baseView
	Form            auth.RegisterForm
	Flow            auth.Flow
	Specializations []string
}

// LoginPage renders a blank login form. Signed-in users go to their
// dashboard instead.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, _, ok := middleware.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, middleware.DashboardPath(sess.User.Role), http.StatusSeeOther)
		return
	}
	h.render.Render(w, "login.html", http.StatusOK, loginView{
		baseView: shell(r, "Log in"),
		Flow:     auth.NewFlow(),
	})
}

// LoginSubmit validates the form, exchanges credentials with the upstream
// and, on success, opens a session and forwards to the role's dashboard.
// Rejected credentials re-render the form with the upstream's message; no
// session is created.
func (h *AuthHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := auth.LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Role:     normalizeRoleForm(r.PostFormValue("role")),
	}
	flow := auth.NewFlow()
	if !flow.Check(form.Validate()) {
		h.render.Render(w, "login.html", http.StatusUnprocessableEntity, loginView{
			baseView: shell(r, "Log in"), Form: form, Flow: flow,
		})
		return
	}

	user, token, err := h.client.Login(r.Context(), form.Email, form.Password, form.Role)
	if err != nil {
		flow.Fail(loginFailureMessage(err))
		h.logger.Warn("login rejected", "email", form.Email, "role", form.Role, "error", err)
		h.render.Render(w, "login.html", http.StatusUnauthorized, loginView{
			baseView: shell(r, "Log in"), Form: form, Flow: flow,
		})
		return
	}

	_, err = h.sessions.Put(r.Context(), w, session.Session{
		User:  session.User{ID: user.ID, Name: user.Name, Role: user.Role},
		Token: token,
	})
	if err != nil {
		h.logger.Error("session create failed", "error", err)
		flow.Fail("Something went wrong, please try again")
		h.render.Render(w, "login.html", http.StatusInternalServerError, loginView{
			baseView: shell(r, "Log in"), Form: form, Flow: flow,
		})
		return
	}
	flow.Succeed()
	http.Redirect(w, r, middleware.DashboardPath(user.Role), http.StatusSeeOther)
}

// RegisterPage renders a blank registration form.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if sess, _, ok := middleware.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, middleware.DashboardPath(sess.User.Role), http.StatusSeeOther)
		return
	}
	h.render.Render(w, "register.html", http.StatusOK, registerView{
		baseView:        shell(r, "Register"),
		Flow:            auth.NewFlow(),
		Specializations: auth.Specializations,
	})
}

// RegisterSubmit validates the form and creates the account upstream.
// Success lands on the login page; a rejected submission (say, a duplicate
// email) re-renders the form with the upstream's message.
func (h *AuthHandler) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := auth.RegisterForm{
		Name:            r.PostFormValue("name"),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		Role:            normalizeRoleForm(r.PostFormValue("role")),
		Specialization:  r.PostFormValue("specialization"),
		PhotoURL:        strings.TrimSpace(r.PostFormValue("photo_url")),
	}
	flow := auth.NewFlow()
	if !flow.Check(form.Validate()) {
		h.render.Render(w, "register.html", http.StatusUnprocessableEntity, registerView{
			baseView: shell(r, "Register"), Form: form, Flow: flow,
			Specializations: auth.Specializations,
		})
		return
	}

	req := upstream.RegisterRequest{
		Name:     strings.TrimSpace(form.Name),
		Email:    form.Email,
		Password: form.Password,
		Role:     strings.ToUpper(form.Role),
	}
	if strings.EqualFold(form.Role, "doctor") {
		req.Specialization = form.Specialization
		req.PhotoURL = form.PhotoURL
	}
	if err := h.client.Register(r.Context(), req); err != nil {
		flow.Fail(registerFailureMessage(err))
		h.logger.Warn("registration rejected", "email", form.Email, "role", form.Role, "error", err)
		h.render.Render(w, "register.html", http.StatusUnprocessableEntity, registerView{
			baseView: shell(r, "Register"), Form: form, Flow: flow,
			Specializations: auth.Specializations,
		})
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout tears down the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.logger.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func normalizeRoleForm(role string) string {
	if strings.EqualFold(role, "doctor") {
		return "doctor"
	}
	return "patient"
}

func loginFailureMessage(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Unable to log in right now, please try again"
}

func registerFailureMessage(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Unable to register right now, please try again"
}
