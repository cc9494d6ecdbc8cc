package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/taskboard-api/internal/middleware"
	"github.com/jaekwang-park/taskboard-api/internal/model"
	"github.com/jaekwang-park/taskboard-api/internal/query"
	"github.com/jaekwang-park/taskboard-api/internal/service"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	DueDate     string `json:"due_date"`
	AssignedTo  string `json:"assigned_to"`
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *int    `json:"priority,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		input.DueDate = due
	}

	task, err := h.svc.Create(r.Context(), middleware.GetCaller(r), input)
	if err != nil {
		handleServiceError(w, r, err, msgTaskNotFound)
		return
	}

	WriteSuccess(w, http.StatusCreated, "Task created successfully.", task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.Get(r.Context(), middleware.GetCaller(r), r.PathValue("id"))
	if err != nil {
		handleServiceError(w, r, err, msgTaskNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, "", task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := parseTaskQuery(r.URL.Query())
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.svc.List(r.Context(), middleware.GetCaller(r), params)
	if err != nil {
		handleServiceError(w, r, err, msgTaskNotFound)
		return
	}

	WriteJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       page.Items,
		Pagination: paginationOf(page),
	})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var input service.UpdateTaskInput
	input.Title = req.Title
	input.Description = req.Description
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := model.Priority(*req.Priority)
		input.Priority = &priority
	}
	if req.DueDate != nil {
		var due time.Time
		if *req.DueDate != "" {
			parsed, err := parseDate(*req.DueDate)
			if err != nil {
				WriteError(w, http.StatusBadRequest, err.Error())
				return
			}
			due = parsed
		}
		input.DueDate = &due
	}

	task, err := h.svc.Update(r.Context(), middleware.GetCaller(r), r.PathValue("id"), input)
	if err != nil {
		handleServiceError(w, r, err, msgTaskNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, "Task updated successfully.", task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), middleware.GetCaller(r), r.PathValue("id")); err != nil {
		handleServiceError(w, r, err, msgTaskNotFound)
		return
	}

	WriteSuccess(w, http.StatusOK, "Task deleted successfully.", nil)
}

// parseTaskQuery reads list parameters from the query string. Range checks
// and defaults are left to query.Params.Normalize.
func parseTaskQuery(v url.Values) (query.Params, error) {
	p := query.Params{
		Filter: query.Filter{
			Title:       v.Get("title"),
			Description: v.Get("description"),
		},
		Sort: query.Sort{Field: query.SortField(v.Get("sort_by"))},
	}

	if s := v.Get("status"); s != "" {
		if !model.TaskStatus(s).IsValid() {
			return query.Params{}, fmt.Errorf("status must be one of pending, in_progress, completed, cancelled")
		}
		p.Filter.Status = s
	}

	var err error
	if p.Page, err = intParam(v, "page"); err != nil {
		return query.Params{}, err
	}
	if p.Limit, err = intParam(v, "limit"); err != nil {
		return query.Params{}, err
	}
	priority, err := intParam(v, "priority")
	if err != nil {
		return query.Params{}, err
	}
	p.Filter.Priority = model.Priority(priority)

	switch v.Get("sort_order") {
	case "":
	case "1":
		p.Sort.Direction = query.Ascending
	case "-1":
		p.Sort.Direction = query.Descending
	default:
		return query.Params{}, fmt.Errorf("sort_order must be 1 or -1")
	}
	return p, nil
}

// intParam returns 0 for an absent key. Explicit values must be positive.
func intParam(v url.Values, key string) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates, read as UTC midnight.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("due_date must be an ISO 8601 date")
}
