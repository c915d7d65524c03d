package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/todos/pkg/types"
)

type todoHandler struct {
	store  Store
	logger *slog.Logger
}

func (h *todoHandler) list(c *gin.Context) {
	todos, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *todoHandler) create(c *gin.Context) {
	var in types.NewTodo
	if !bindJSON(c, &in) {
		return
	}
	todo, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

func (h *todoHandler) get(c *gin.Context) {
	todo, found, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// update serves both PUT and PATCH with partial-update semantics.
func (h *todoHandler) update(c *gin.Context) {
	var patch types.TodoPatch
	if !bindJSON(c, &patch) {
		return
	}
	todo, found, err := h.store.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		writeError(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *todoHandler) delete(c *gin.Context) {
	deleted, err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, msgNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *todoHandler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *todoHandler) readyz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.WarnContext(c.Request.Context(), "readiness check failed",
			"rid", RequestIDFrom(c),
			"err", err,
		)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps a store error to a response. Validation errors carry their
// message; anything else is logged and reported as an internal error.
func (h *todoHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, types.ErrValidation) {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.ErrorContext(c.Request.Context(), "store operation failed",
		"rid", RequestIDFrom(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"err", err,
	)
	writeError(c, http.StatusInternalServerError, msgInternal)
}
