package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskgate/internal/app"
	"taskgate/internal/transport/http/response"
)

type TaskHandler struct {
	taskService *app.TaskService
}

type TaskRequest struct {
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

func NewTaskHandler(taskService *app.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.taskService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(fmt.Errorf("list tasks failed: %w", err))
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Create(c *gin.Context) {
	input, ok := bindTask(c)
	if !ok {
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("%s/%d", c.Request.URL.Path, task.ID))
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	task, err := h.taskService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	input, ok := bindTask(c)
	if !ok {
		return
	}
	if err := h.taskService.Update(c.Request.Context(), id, input); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrTaskNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, app.ErrValidation):
		response.ValidationProblem(c, app.ValidationReasons(err))
	default:
		_ = c.Error(err)
	}
}

// taskID only accepts positive integers; anything else does not name a
// route and answers 404.
func taskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.Status(http.StatusNotFound)
		return 0, false
	}
	return uint(id), true
}

func bindTask(c *gin.Context) (app.TaskInput, bool) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationProblem(c, []string{"request body must be a JSON object"})
		return app.TaskInput{}, false
	}
	return app.TaskInput{Title: req.Title, IsCompleted: req.IsCompleted}, true
}
