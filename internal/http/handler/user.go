package handler

import (
	"net/http"

	"github.com/jaekwang-park/taskboard-api/internal/middleware"
	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

// UserHandler serves identity management. Everything except List is
// admin-only; the router guards those routes and the service checks again.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type createUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type editUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	params := model.UserListParams{Search: v.Get("search")}

	var err error
	if params.Page, err = intParam(v, "page"); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if params.Limit, err = intParam(v, "limit"); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, r, err, msgUserNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       page.Items,
		Pagination: paginationOf(page),
	})
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Create(r.Context(), middleware.GetCaller(r), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		handleServiceError(w, r, err, msgUserNotFound)
		return
	}

	WriteSuccess(w, http.StatusCreated, "User created successfully.", user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Get(r.Context(), middleware.GetCaller(r), r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, err, msgUserNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, "", user)
}

func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req editUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Edit(r.Context(), middleware.GetCaller(r), r.PathValue("id"), service.EditUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handleServiceError(w, r, err, msgUserNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, "User edited successfully.", user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.GetCaller(r), r.PathValue("id")); err != nil {
		handleServiceError(w, r, err, msgUserNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, "User deleted successfully.", nil)
}
