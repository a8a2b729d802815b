package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/service"
	"agenda/pkg/timezone"
)

type Handler struct {
	services   *service.Services
	logger     *zap.Logger
	config     *config.Config
	normalizer *timezone.Normalizer
}

func NewHandler(services *service.Services, logger *zap.Logger, config *config.Config, normalizer *timezone.Normalizer) *Handler {
	return &Handler{
		services:   services,
		logger:     logger,
		config:     config,
		normalizer: normalizer,
	}
}

func (h *Handler) InitRoutes(router *gin.Engine) {
	router.Use(h.loggerMiddleware())

	router.Use(h.errorMiddleware())

	router.Use(h.corsMiddleware())

	api := router.Group("/api/v1")
	{
		availability := api.Group("/availability")
		{
			availability.GET("/check", h.checkAvailability)
		}

		h.initScheduleRoutes(api)

		appointments := api.Group("/appointments")
		{
			appointments.POST("/", h.createAppointment)
			appointments.GET("/", h.getAppointments)
			appointments.GET("/:id", h.getAppointmentByID)
			appointments.PUT("/:id", h.updateAppointment)
			appointments.DELETE("/:id", h.cancelAppointment)

			appointments.POST("/:id/confirm", h.confirmAppointment)
			appointments.POST("/:id/complete", h.completeAppointment)
			appointments.POST("/:id/no-show", h.markNoShow)
		}

		calendarRoutes := api.Group("/calendar")
		{
			calendarRoutes.POST("/sync/:doctorId", h.syncCalendar)
		}

		api.GET("/timezones", h.getTimezones)
	}
}

func (h *Handler) initScheduleRoutes(api *gin.RouterGroup) {
	schedules := api.Group("/schedules")
	{
		schedules.GET("/free-slots", h.getFreeSlots)
		schedules.GET("/availability", h.getDoctorAvailability)
	}
}
