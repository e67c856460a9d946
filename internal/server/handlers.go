package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/notexe/reminder-dash/internal/reminder"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// reminderRequest is the body of create and update. The server is
// stricter than the client: titles need three characters and the due
// date must be in the future.
type reminderRequest struct {
	Title       string             `json:"title" validate:"notblank,min=3,max=255"`
	Description string             `json:"description" validate:"max=1000"`
	DueDate     reminder.Timestamp `json:"dueDate" validate:"future"`
	Priority    reminder.Priority  `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
}

func (r reminderRequest) draft() reminder.Draft {
	return reminder.Draft{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		DueDate:     r.DueDate,
		Priority:    r.Priority,
	}
}

// pageResponse mirrors a Spring Data page.
type pageResponse struct {
	Content       []reminder.Reminder `json:"content"`
	TotalPages    int                 `json:"totalPages"`
	TotalElements int                 `json:"totalElements"`
	Number        int                 `json:"number"`
	Size          int                 `json:"size"`
}

type errorResponse struct {
	Status  int                  `json:"status"`
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Errors  reminder.FieldErrors `json:"errors,omitempty"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: msg,
	})
}

// list handles GET /all?page&size&sort&title&priority&isCompleted.
func (s *Server) list(c *gin.Context) {
	var f reminder.Filter
	var err error

	if f.Page, err = intParam(c, "page", 0); err != nil || f.Page < 0 {
		abort(c, http.StatusBadRequest, "page must be a non-negative integer")
		return
	}
	if f.Size, err = intParam(c, "size", defaultPageSize); err != nil || f.Size < 1 {
		abort(c, http.StatusBadRequest, "size must be a positive integer")
		return
	}
	if f.Size > maxPageSize {
		f.Size = maxPageSize
	}

	if f.Sort, err = reminder.ParseSort(c.Query("sort")); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if !reminder.Sortable(f.Sort) {
		abort(c, http.StatusBadRequest, fmt.Sprintf("cannot sort by %q", f.Sort.Field))
		return
	}

	f.Title = c.Query("title")

	if f.Priority, err = reminder.ParsePriority(c.Query("priority")); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	if v, ok := c.GetQuery("isCompleted"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			abort(c, http.StatusBadRequest, "isCompleted must be true or false")
			return
		}
		f.Completed = &b
	}

	items, total, err := s.store.List(c.Request.Context(), f)
	if err != nil {
		c.Error(err)
		abort(c, http.StatusInternalServerError, "Failed to list reminders")
		return
	}

	c.JSON(http.StatusOK, pageResponse{
		Content:       items,
		TotalPages:    (total + f.Size - 1) / f.Size,
		TotalElements: total,
		Number:        f.Page,
		Size:          f.Size,
	})
}

func (s *Server) get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	r, err := s.store.GetByID(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) create(c *gin.Context) {
	req, ok := s.bind(c)
	if !ok {
		return
	}

	r, err := s.store.Add(c.Request.Context(), req.draft())
	if err != nil {
		c.Error(err)
		abort(c, http.StatusInternalServerError, "Failed to create reminder")
		return
	}

	c.Header("Location", fmt.Sprintf("%s/get/%d", basePath, r.ID))
	c.JSON(http.StatusCreated, r)
}

func (s *Server) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	req, ok := s.bind(c)
	if !ok {
		return
	}

	r, err := s.store.Update(c.Request.Context(), id, req.draft())
	if err != nil {
		s.storeError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) remove(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) complete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	r, err := s.store.Complete(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) bind(c *gin.Context) (reminderRequest, bool) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}

	if err := s.validate.Struct(req); err != nil {
		var fe reminder.FieldErrors
		if errors.As(err, &fe) {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
				Status:  http.StatusBadRequest,
				Error:   http.StatusText(http.StatusBadRequest),
				Message: fe.Error(),
				Errors:  fe,
			})
			return req, false
		}
		abort(c, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}

func (s *Server) storeError(c *gin.Context, id int64, err error) {
	if errors.Is(err, reminder.ErrNotFound) {
		abort(c, http.StatusNotFound, fmt.Sprintf("Reminder not found with id: %d", id))
		return
	}
	c.Error(err)
	abort(c, http.StatusInternalServerError, "Internal server error")
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abort(c, http.StatusBadRequest, "Invalid reminder id")
		return 0, false
	}
	return id, true
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
