package handler

import (
	"net/http"

	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

// AuthHandler serves the public login and signup endpoints.
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err, msgUserNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "Login successfully.",
		Data:    out.User,
		Token:   out.Token,
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Signup(r.Context(), service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      model.Role(req.Role),
	})
	if err != nil {
		handleServiceError(w, r, err, msgUserNotFound)
		return
	}

	WriteSuccess(w, http.StatusCreated, "User created successfully.", user)
}
