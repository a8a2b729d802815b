package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary Проверить доступность слота
// @Description Проверяет доступность слота врача: рабочие часы, пересечения с локальными записями и занятость во внешнем календаре. Момент начала передается в UTC в формате RFC3339.
// @Tags Доступность
// @Accept json
// @Produce json
// @Param doctor_id query int true "ID врача"
// @Param start query string true "Начало слота в UTC (RFC3339)"
// @Param duration query int true "Длительность в минутах"
// @Success 200 {object} map[string]bool "Признак доступности"
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Failure 502 {object} errorResponseBody "Внешний календарь недоступен"
// @Router /availability/check [get]
func (h *Handler) checkAvailability(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Query("doctor_id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID врача", zap.Error(err))
		badRequestResponse(c, "неверный формат ID врача")
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		h.logger.Warn("неверный формат начала слота", zap.Error(err))
		badRequestResponse(c, "неверный формат начала слота, ожидается RFC3339")
		return
	}

	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		badRequestResponse(c, "неверный формат длительности")
		return
	}

	available, err := h.services.Availability.IsAvailable(c.Request.Context(), doctorID, start.UTC(), duration)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка проверки доступности")
		return
	}

	successResponse(c, http.StatusOK, gin.H{"available": available})
}

// @Summary Поддерживаемые временные зоны
// @Description Возвращает список поддерживаемых временных зон и зону по умолчанию
// @Tags Доступность
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Список зон"
// @Router /timezones [get]
func (h *Handler) getTimezones(c *gin.Context) {
	successResponse(c, http.StatusOK, gin.H{
		"timezones": h.normalizer.Supported(),
		"default":   h.normalizer.Default(),
	})
}
