package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/msomdec/agenda/internal/domain"
	"github.com/msomdec/agenda/internal/metrics"
	"github.com/msomdec/agenda/internal/service"
	"github.com/msomdec/agenda/internal/view"
)

const authCookieName = "auth_token"

// AuthHandler handles registration, login, logout and password changes.
type AuthHandler struct {
	auth         *service.AuthService
	limiter      *service.LoginLimiter
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. Login attempts are throttled per
// client IP by limiter.
func NewAuthHandler(auth *service.AuthService, limiter *service.LoginLimiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, cookieSecure: cookieSecure}
}

// HandleLoginPage renders the login form.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	page := view.FormPage{}
	if r.URL.Query().Get("registered") == "1" {
		page.Notice = "Account created. You can log in now."
	}
	renderPage(w, r, http.StatusOK, view.LoginPage(page))
}

// HandleLogin checks credentials and sets the session cookie.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	page := view.FormPage{Values: map[string]string{"username": username}}

	if !h.limiter.Allow(clientIP(r)) {
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		w.Header().Set("Retry-After", "60")
		page.Error = "Too many login attempts. Please wait a minute and try again."
		renderPage(w, r, http.StatusTooManyRequests, view.LoginPage(page))
		return
	}

	token, err := h.auth.Login(r.Context(), username, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
			page.Error = "Invalid username or password."
			renderPage(w, r, http.StatusUnauthorized, view.LoginPage(page))
			return
		}
		internalError(w, r, "login user", err)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	h.setAuthCookie(w, token)
	http.Redirect(w, r, "/agenda", http.StatusSeeOther)
}

// HandleRegisterPage renders the registration form.
// GET /register
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.RegisterPage(view.FormPage{}))
}

// HandleRegister creates an account and sends the user to the login page.
// POST /register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	form := service.RegisterForm{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	page := view.FormPage{Values: map[string]string{"username": form.Username, "email": form.Email}}

	if _, err := h.auth.Register(r.Context(), form); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateCredential):
			page.Error = "That username or email is already taken."
			renderPage(w, r, http.StatusConflict, view.RegisterPage(page))
		case errors.Is(err, domain.ErrInvalidInput):
			page.Error = err.Error()
			renderPage(w, r, http.StatusUnprocessableEntity, view.RegisterPage(page))
		default:
			internalError(w, r, "register user", err)
		}
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandlePasswordPage renders the change-password form.
// GET /account/password
func (h *AuthHandler) HandlePasswordPage(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	renderPage(w, r, http.StatusOK, view.PasswordPage(view.FormPage{Frame: view.Frame{Username: user.Username}}))
}

// HandleChangePassword replaces the signed-in user's password.
// POST /account/password
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := view.FormPage{Frame: view.Frame{Username: user.Username}}
	err := h.auth.ChangePassword(r.Context(), user.ID, service.PasswordForm{
		OldPassword:     r.FormValue("old_password"),
		NewPassword:     r.FormValue("new_password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	})
	switch {
	case err == nil:
		page.Notice = "Password changed."
		renderPage(w, r, http.StatusOK, view.PasswordPage(page))
	case errors.Is(err, domain.ErrWrongPassword):
		page.Error = "Current password is incorrect."
		renderPage(w, r, http.StatusUnprocessableEntity, view.PasswordPage(page))
	case errors.Is(err, domain.ErrInvalidInput):
		page.Error = err.Error()
		renderPage(w, r, http.StatusUnprocessableEntity, view.PasswordPage(page))
	default:
		internalError(w, r, "change password", err)
	}
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(service.TokenTTL / time.Second),
	})
}
