package handlers

import (
	"context"
	"net/http"
	"strings"

	"RxClinic/apperrors"
	"RxClinic/models"
	"RxClinic/repositories"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CRUDService is the business surface a CRUDHandler serves.
type CRUDService[T any, P models.RecordPtr[T]] interface {
	Table() string
	Create(ctx context.Context, actor models.Actor, rec P) (P, error)
	Get(ctx context.Context, id string, includes []string) (P, error)
	List(ctx context.Context, includes []string, scopes ...repositories.Scope) ([]T, error)
	Update(ctx context.Context, actor models.Actor, id string, apply func(P) error) (P, error)
	SetStatus(ctx context.Context, actor models.Actor, id, status string) (P, error)
	Delete(ctx context.Context, actor models.Actor, id string) error
}

// Parent binds a nested resource to the row named by a path parameter.
type Parent[T any, P models.RecordPtr[T]] struct {
	Param  string
	Column string
	Key    func(P) string
	SetKey func(P, string)
}

// CRUDHandler serves create, read, update, status and delete for one entity.
type CRUDHandler[T any, P models.RecordPtr[T]] struct {
	service CRUDService[T, P]
	view    func(P) any
	parent  *Parent[T, P]
	merge   func(*gin.Context, P) error
	idParam string
	log     zerolog.Logger
}

func NewCRUDHandler[T any, P models.RecordPtr[T]](service CRUDService[T, P], view func(P) any, log zerolog.Logger) *CRUDHandler[T, P] {
	if view == nil {
		view = func(rec P) any { return rec }
	}
	return &CRUDHandler[T, P]{
		service: service,
		view:    view,
		merge:   func(c *gin.Context, rec P) error { return bind(c, rec) },
		idParam: "id",
		log:     log.With().Str("resource", service.Table()).Logger(),
	}
}

// Nested returns a copy of h serving rows under parent. Item routes read
// their own id from idParam.
func (h *CRUDHandler[T, P]) Nested(parent Parent[T, P], idParam string) *CRUDHandler[T, P] {
	n := *h
	n.parent = &parent
	n.idParam = idParam
	return &n
}

// WithMerge replaces the default body binding of updates.
func (h *CRUDHandler[T, P]) WithMerge(merge func(*gin.Context, P) error) *CRUDHandler[T, P] {
	h.merge = merge
	return h
}

func includes(c *gin.Context) []string {
	raw := c.Query("include")
	if raw == "" {
		return nil
	}
	var out []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// load fetches the row named by the path and checks it belongs to the parent.
func (h *CRUDHandler[T, P]) load(c *gin.Context, incs []string) (P, error) {
	id := c.Param(h.idParam)
	rec, err := h.service.Get(c.Request.Context(), id, incs)
	if err != nil {
		return nil, err
	}
	if h.parent != nil && h.parent.Key(rec) != c.Param(h.parent.Param) {
		return nil, &apperrors.NotFoundError{Entity: h.service.Table(), ID: id}
	}
	return rec, nil
}

func (h *CRUDHandler[T, P]) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	rec := P(new(T))
	if err := bind(c, rec); err != nil {
		fail(c, h.log, err)
		return
	}
	if h.parent != nil {
		h.parent.SetKey(rec, c.Param(h.parent.Param))
	}
	created, err := h.service.Create(c.Request.Context(), a, rec)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(created))
}

func (h *CRUDHandler[T, P]) Get(c *gin.Context) {
	rec, err := h.load(c, includes(c))
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.view(rec))
}

func (h *CRUDHandler[T, P]) List(c *gin.Context) {
	var scopes []repositories.Scope
	if h.parent != nil {
		scopes = append(scopes, repositories.Where(h.parent.Column, c.Param(h.parent.Param)))
	}
	rows, err := h.service.List(c.Request.Context(), includes(c), scopes...)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = h.view(&rows[i])
	}
	c.JSON(http.StatusOK, out)
}

// Update merges the request body onto the stored row. Fields absent from the
// body keep their stored values.
func (h *CRUDHandler[T, P]) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if _, err := h.load(c, nil); err != nil {
		fail(c, h.log, err)
		return
	}
	updated, err := h.service.Update(c.Request.Context(), a, c.Param(h.idParam), func(rec P) error {
		if err := h.merge(c, rec); err != nil {
			return err
		}
		if h.parent != nil {
			h.parent.SetKey(rec, c.Param(h.parent.Param))
		}
		return nil
	})
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.view(updated))
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

func (h *CRUDHandler[T, P]) SetStatus(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		fail(c, h.log, err)
		return
	}
	if _, err := h.load(c, nil); err != nil {
		fail(c, h.log, err)
		return
	}
	rec, err := h.service.SetStatus(c.Request.Context(), a, c.Param(h.idParam), req.Status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, h.view(rec))
}

func (h *CRUDHandler[T, P]) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if _, err := h.load(c, nil); err != nil {
		fail(c, h.log, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), a, c.Param(h.idParam)); err != nil {
		fail(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Register mounts the handler on group. Item routes are at /:idParam.
func (h *CRUDHandler[T, P]) Register(group gin.IRoutes) {
	item := "/:" + h.idParam
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET(item, h.Get)
	group.PUT(item, h.Update)
	group.PATCH(item+"/status", h.SetStatus)
	group.DELETE(item, h.Delete)
}
