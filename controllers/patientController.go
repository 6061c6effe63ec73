package controllers

import (
	"RxClinic/handlers"
	"RxClinic/middlewares"
	"RxClinic/models"

	"github.com/gin-gonic/gin"
)

// SetupClinicRoutes mounts every resource behind auth.
func SetupClinicRoutes(router gin.IRouter, h *handlers.Handlers, auth gin.HandlerFunc) {
	api := router.Group("", auth)

	h.Users.Register(api.Group("/users"))
	h.Patients.Register(api.Group("/patients"))
	h.Allergies.Register(api.Group("/patients/:id/allergies"))
	h.FamilyHistory.Register(api.Group("/patients/:id/family-history"))
	h.Specializations.Register(api.Group("/specializations"))
	h.Schedules.Register(api.Group("/schedules"))
	h.Consultations.Register(api.Group("/consultations"))
	h.Attachments.Register(api.Group("/consultations/:id/attachments"))
	h.Payments.Register(api.Group("/payments"))

	doctors := api.Group("/doctors")
	h.Doctors.Register(doctors)
	doctors.PATCH("/:id/verification",
		middlewares.RoleAuthMiddleware(models.UserTypeAdmin, models.UserTypeDoctor),
		h.Doctors.Verify,
	)
}
