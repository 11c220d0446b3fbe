package http

import (
	"net/http"

	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/pilotsdk"
)

type SignupHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Sign Up
//	@Description	Register an account and email a verification link. The account cannot log in until verified.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pilotsdk.SignupRequest		true	"username, email, password"
//	@Success		201		{object}	pilotsdk.MessageResponse	"message"
//	@Failure		400		{object}	httpx.ErrorResponse			"validation error or user exists"
//	@Failure		429		{object}	httpx.ErrorResponse			"rate limited"
//	@Failure		500		{object}	httpx.ErrorResponse			"email delivery failed, use resend"
//	@Router			/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req pilotsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, "failed to decode signup request")
		return
	}

	_, err := h.AuthService.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to sign up")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, pilotsdk.MessageResponse{
		Message: "User registered. Please check your email to verify your account.",
	})
}

type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Log In
//	@Description	Exchange email and password for a session token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pilotsdk.LoginRequest	true	"email, password"
//	@Success		200		{object}	pilotsdk.AuthResponse	"token, message, user"
//	@Failure		400		{object}	httpx.ErrorResponse		"invalid credentials or email not verified"
//	@Failure		429		{object}	httpx.ErrorResponse		"rate limited"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req pilotsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, "failed to decode login request")
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "failed to log in")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pilotsdk.AuthResponse{
		Token:   sess.Token,
		Message: "Login successful",
		User:    toUser(sess.User),
	})
}

type VerifyEmailHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Verify Email
//	@Description	Redeem the token from a verification email. Signs the user in.
//	@Tags			Auth
//	@Produce		json
//	@Param			token	path		string					true	"Verification token"
//	@Success		200		{object}	pilotsdk.AuthResponse	"token, message, user"
//	@Failure		400		{object}	httpx.ErrorResponse		"invalid, expired or replaced token"
//	@Router			/auth/verify/{token} [get].
func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.AuthService.VerifyEmail(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(w, r, err, "failed to verify email")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pilotsdk.AuthResponse{
		Token:   sess.Token,
		Message: "Email verified successfully",
		User:    toUser(sess.User),
	})
}

type ResendVerificationHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Resend Verification Email
//	@Description	Issue a fresh verification token. Earlier tokens stop working.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		pilotsdk.ResendVerificationRequest	true	"email"
//	@Success		200		{object}	pilotsdk.MessageResponse			"message"
//	@Failure		400		{object}	httpx.ErrorResponse					"missing email or already verified"
//	@Failure		404		{object}	httpx.ErrorResponse					"no such user"
//	@Failure		500		{object}	httpx.ErrorResponse					"email delivery failed"
//	@Router			/auth/resend-verification [post].
func (h *ResendVerificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req pilotsdk.ResendVerificationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err, "failed to decode resend request")
		return
	}

	if err := h.AuthService.ResendVerification(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "failed to resend verification")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pilotsdk.MessageResponse{
		Message: "Verification email sent. Please check your inbox.",
	})
}

// MeHandler returns the authenticated user.
type MeHandler struct{}

// ServeHTTP godoc
//
//	@Summary		Current User
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	pilotsdk.User		"user"
//	@Failure		401	{object}	httpx.ErrorResponse	"missing, invalid or expired token"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, ok := mustUser(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(u))
}
