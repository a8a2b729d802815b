package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agenda/internal/domain"
)

// @Summary Создать запись на прием
// @Description Создает новую запись к врачу. Время указывается в локальной зоне врача в формате "2006-01-02 15:04". Слот проверяется по рабочим часам, локальным записям и внешнему календарю врача.
// @Tags Записи
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Данные для записи на прием"
// @Success 201 {object} domain.Appointment "Созданная запись"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Врач или пациент не найден"
// @Failure 409 {object} errorResponseBody "Выбранное время недоступно"
// @Failure 502 {object} errorResponseBody "Внешний календарь недоступен"
// @Router /appointments [post]
func (h *Handler) createAppointment(c *gin.Context) {
	var req domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointment, err := h.services.Appointment.Create(c.Request.Context(), req)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка создания записи на прием")
		return
	}

	createdResponse(c, appointment)
}

// @Summary Получить запись по ID
// @Description Возвращает информацию о записи на прием по указанному ID
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Данные записи"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID", zap.Error(err))
		badRequestResponse(c, "неверный формат ID")
		return
	}

	appointment, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка получения записи")
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Список записей врача
// @Description Возвращает записи врача, сверенные с внешним календарем. При недоступности календаря список строится по локальному хранилищу.
// @Tags Записи
// @Accept json
// @Produce json
// @Param doctor_id query int true "ID врача"
// @Param patient_id query int false "ID пациента"
// @Param status query string false "Статус записи" Enums(scheduled, confirmed, cancelled, completed, no_show)
// @Param date_from query string false "Начало диапазона (2006-01-02)"
// @Param date_to query string false "Конец диапазона (2006-01-02)"
// @Param limit query int false "Размер страницы" default(20)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} paginatedResponse "Список записей"
// @Failure 400 {object} errorResponseBody "Неверные параметры"
// @Failure 404 {object} errorResponseBody "Врач не найден"
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	doctorID, err := strconv.ParseInt(c.Query("doctor_id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID врача", zap.Error(err))
		badRequestResponse(c, "неверный формат ID врача")
		return
	}

	var patientID *int64
	if raw := c.Query("patient_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequestResponse(c, "неверный формат ID пациента")
			return
		}
		patientID = &parsed
	}

	var status *domain.AppointmentStatus
	if raw := c.Query("status"); raw != "" {
		parsed := domain.AppointmentStatus(raw)
		status = &parsed
	}

	var startDate *time.Time
	if raw := c.Query("date_from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequestResponse(c, "неверный формат даты начала")
			return
		}
		startDate = &parsed
	}

	var endDate *time.Time
	if raw := c.Query("date_to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			badRequestResponse(c, "неверный формат даты окончания")
			return
		}
		parsed = parsed.Add(24 * time.Hour)
		endDate = &parsed
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := domain.AppointmentFilter{
		DoctorID:  doctorID,
		PatientID: patientID,
		Status:    status,
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     limit,
		Offset:    offset,
	}

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка получения записей")
		return
	}

	page := offset/limit + 1

	paginatedSuccessResponse(c, appointments, total, page, limit)
}

// @Summary Обновить запись
// @Description Переносит запись или меняет ее длительность, тип и заметки. Повторная проверка доступности при переносе зависит от конфигурации.
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.UpdateAppointmentDTO true "Данные для обновления записи"
// @Success 200 {object} domain.Appointment "Обновленная запись"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Новое время недоступно или запись в терминальном статусе"
// @Router /appointments/{id} [put]
func (h *Handler) updateAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID", zap.Error(err))
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var req domain.UpdateAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointment, err := h.services.Appointment.Update(c.Request.Context(), id, req)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка обновления записи")
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Отменить запись
// @Description Отменяет запись на прием. При отмене позже срока предупреждения врача начисляется штраф.
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.CancelAppointmentDTO false "Причина отмены"
// @Success 200 {object} domain.Appointment "Отмененная запись"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Запись уже в терминальном статусе"
// @Router /appointments/{id} [delete]
func (h *Handler) cancelAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID", zap.Error(err))
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var req domain.CancelAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointment, err := h.services.Appointment.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка отмены записи")
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Подтвердить запись
// @Description Переводит запись из статуса scheduled в confirmed
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Подтвержденная запись"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Недопустимый переход статуса"
// @Router /appointments/{id}/confirm [post]
func (h *Handler) confirmAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID", zap.Error(err))
		badRequestResponse(c, "неверный формат ID")
		return
	}

	appointment, err := h.services.Appointment.Confirm(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка подтверждения записи")
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Завершить прием
// @Description Закрывает подтвержденную запись и сохраняет диагноз и рекомендации
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.CompleteAppointmentDTO false "Итог приема"
// @Success 200 {object} domain.Appointment "Завершенная запись"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Завершить можно только подтвержденную запись"
// @Router /appointments/{id}/complete [post]
func (h *Handler) completeAppointment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID", zap.Error(err))
		badRequestResponse(c, "неверный формат ID")
		return
	}

	var req domain.CompleteAppointmentDTO
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	appointment, err := h.services.Appointment.Complete(c.Request.Context(), id, req)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка завершения приема")
		return
	}

	successResponse(c, http.StatusOK, appointment)
}

// @Summary Отметить неявку
// @Description Переводит запись в статус no_show
// @Tags Записи
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment "Запись с отметкой о неявке"
// @Failure 400 {object} errorResponseBody "Неверный формат ID"
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Failure 409 {object} errorResponseBody "Недопустимый переход статуса"
// @Router /appointments/{id}/no-show [post]
func (h *Handler) markNoShow(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.logger.Warn("неверный формат ID", zap.Error(err))
		badRequestResponse(c, "неверный формат ID")
		return
	}

	appointment, err := h.services.Appointment.NoShow(c.Request.Context(), id)
	if err != nil {
		h.serviceErrorResponse(c, err, "ошибка отметки неявки")
		return
	}

	successResponse(c, http.StatusOK, appointment)
}
