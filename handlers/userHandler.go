package handlers

import (
	"context"
	"net/http"

	"RxClinic/models"
	"RxClinic/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// userRequest is a user body that may carry a plaintext password.
type userRequest struct {
	models.User
	Password string `json:"password" form:"password"`
}

// userCRUD adapts UserService to the generic handler. Creation goes through
// UserHandler.Create, which reads the password.
type userCRUD struct {
	*services.UserService
}

func (u userCRUD) Create(ctx context.Context, actor models.Actor, rec *models.User) (*models.User, error) {
	return u.UserService.Create(ctx, actor, rec, "")
}

type UserHandler struct {
	*CRUDHandler[models.User, *models.User]
	users   *services.UserService
	baseURL string
}

func NewUserHandler(users *services.UserService, baseURL string, log zerolog.Logger) *UserHandler {
	view := func(u *models.User) any { return u.View(baseURL) }
	return &UserHandler{
		CRUDHandler: NewCRUDHandler[models.User](userCRUD{users}, view, log),
		users:       users,
		baseURL:     baseURL,
	}
}

// Create adds a user of any type. Admin only.
func (h *UserHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req userRequest
	if err := bind(c, &req); err != nil {
		fail(c, h.log, err)
		return
	}
	u, err := h.users.Create(c.Request.Context(), a, &req.User, req.Password)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, u.View(h.baseURL))
}

func (h *UserHandler) Register(group gin.IRoutes) {
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.PATCH("/:id/status", h.SetStatus)
	group.DELETE("/:id", h.Delete)
}
