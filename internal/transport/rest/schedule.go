package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary Свободные слоты врача на дату
// @Description Возвращает сетку слотов врача на локальную дату с признаком занятости. Дата интерпретируется в зоне врача, границы слотов возвращаются в UTC.
// @Tags Расписание
// @Accept json
// @Produce json
// @Param doctor_id query int true "ID врача"
// @Param date query string true "Локальная дата (2006-01-02)"
// @Param duration query int false "Длительность приема в минутах" default(30)
// @Success 200 {array} domain.Slot "Сетка слотов"
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Router /schedules/free-slots [get]
func (h *Handler) getFreeSlots(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Query("doctor_id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID врача", zap.Error(err))
		badRequestResponse(c, "неверный формат ID врача")
		return
	}

	date := c.Query("date")
	if date == "" {
		badRequestResponse(c, "не указана дата")
		return
	}

	duration, err := strconv.Atoi(c.DefaultQuery("duration", strconv.Itoa(h.config.Availability.SlotStepMinutes)))
	if err != nil {
		badRequestResponse(c, "неверный формат длительности")
		return
	}

	slots, err := h.services.Schedule.GetFreeSlots(c.Request.Context(), doctorID, date, duration)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка получения свободных слотов")
		return
	}

	successResponse(c, http.StatusOK, slots)
}

// @Summary Доступность врача на диапазон дат
// @Description Возвращает сетку слотов врача на диапазон локальных дат включительно. Диапазон ограничен месяцем.
// @Tags Расписание
// @Accept json
// @Produce json
// @Param doctor_id query int true "ID врача"
// @Param start_date query string true "Начало диапазона (2006-01-02)"
// @Param end_date query string true "Конец диапазона (2006-01-02)"
// @Success 200 {array} domain.Slot "Сетка слотов"
// @Failure 400 {object} errorResponseBody "Неверные параметры или диапазон больше месяца"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Router /schedules/availability [get]
func (h *Handler) getDoctorAvailability(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Query("doctor_id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID врача", zap.Error(err))
		badRequestResponse(c, "неверный формат ID врача")
		return
	}

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		badRequestResponse(c, "не указан диапазон дат")
		return
	}

	slots, err := h.services.Schedule.GetDoctorAvailability(c.Request.Context(), doctorID, startDate, endDate)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка получения доступности врача")
		return
	}

	successResponse(c, http.StatusOK, slots)
}
