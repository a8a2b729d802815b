package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @Summary Синхронизировать календарь врача
// @Description Сверяет локальные записи с внешним календарем врача в пределах окна синхронизации. Неизвестные события создают записи-оболочки, расхождения обновляются, ошибки отдельных событий собираются в отчет.
// @Tags Календарь
// @Accept json
// @Produce json
// @Param doctorId path int true "ID врача"
// @Success 200 {object} domain.SyncResult "Отчет синхронизации"
// @Failure 400 {object} errorResponseBody "У врача не подключен календарь"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Failure 502 {object} errorResponseBody "Внешний календарь недоступен"
// @Router /calendar/sync/{doctorId} [post]
func (h *Handler) syncCalendar(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Param("doctorId"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID врача", zap.Error(err))
		badRequestResponse(c, "неверный формат ID врача")
		return
	}

	result, err := h.services.Calendar.Sync(c.Request.Context(), doctorID)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка синхронизации календаря")
		return
	}

	successResponse(c, http.StatusOK, result)
}
