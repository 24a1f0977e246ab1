package handlers

import (
	"net/http"

	"github.com/carebridge/portal/internal/http/middleware"
	"github.com/carebridge/portal/internal/session"
)

// baseView carries what the page shell needs: the title and, when signed
// in, the user driving the nav.
type baseView struct {
	Title string
	User  *session.User
}

func shell(r *http.Request, title string) baseView {
	view := baseView{Title: title}
	if sess, _, ok := middleware.SessionFromContext(r.Context()); ok {
		user := sess.User
		view.User = &user
	}
	return view
}

// HomeHandler serves the landing page.
type HomeHandler struct {
	render *Renderer
}

func NewHomeHandler(render *Renderer) *HomeHandler {
	return &HomeHandler{render: render}
}

// Home renders the landing page, or forwards signed-in users straight to
// their dashboard.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	if sess, _, ok := middleware.SessionFromContext(r.Context()); ok {
		http.Redirect(w, r, middleware.DashboardPath(sess.User.Role), http.StatusSeeOther)
		return
	}
	h.render.Render(w, "home.html", http.StatusOK, shell(r, "Welcome"))
}
