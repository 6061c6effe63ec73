package handlers

import (
	"net/http"

	"RxClinic/models"
	"RxClinic/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type DoctorHandler struct {
	*CRUDHandler[models.Doctor, *models.Doctor]
	doctors *services.DoctorService
	baseURL string
}

func NewDoctorHandler(doctors *services.DoctorService, baseURL string, log zerolog.Logger) *DoctorHandler {
	view := func(d *models.Doctor) any { return d.View(baseURL) }
	return &DoctorHandler{
		CRUDHandler: NewCRUDHandler[models.Doctor](doctors, view, log),
		doctors:     doctors,
		baseURL:     baseURL,
	}
}

type verificationRequest struct {
	Status string `json:"verification_status" form:"verification_status"`
}

// Verify records a verification decision on a doctor.
func (h *DoctorHandler) Verify(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req verificationRequest
	if err := bind(c, &req); err != nil {
		fail(c, h.log, err)
		return
	}
	d, err := h.doctors.Verify(c.Request.Context(), a, c.Param("id"), req.Status)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d.View(h.baseURL))
}
