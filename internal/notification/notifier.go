package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"agenda/config"
)

// Notifier — порт исходящих уведомлений. Все вызовы best-effort: ошибка
// логируется вызывающим и никогда не отменяет основную операцию.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appointmentID int64, patientEmail string, startUTC time.Time) error
	AppointmentCancelled(ctx context.Context, appointmentID int64, patientEmail, reason string) error
}

type WebhookNotifier struct {
	cfg        config.NotifyConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewWebhookNotifier(cfg config.NotifyConfig, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (n *WebhookNotifier) AppointmentBooked(ctx context.Context, appointmentID int64, patientEmail string, startUTC time.Time) error {
	return n.post(ctx, map[string]interface{}{
		"event":          "appointment_booked",
		"appointment_id": appointmentID,
		"patient_email":  patientEmail,
		"start_utc":      startUTC.Format(time.RFC3339),
	})
}

func (n *WebhookNotifier) AppointmentCancelled(ctx context.Context, appointmentID int64, patientEmail, reason string) error {
	return n.post(ctx, map[string]interface{}{
		"event":          "appointment_cancelled",
		"appointment_id": appointmentID,
		"patient_email":  patientEmail,
		"reason":         reason,
	})
}

func (n *WebhookNotifier) post(ctx context.Context, payload map[string]interface{}) error {
	if n.cfg.WebhookURL == "" {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации уведомления: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса уведомления: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки уведомления: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("уведомление отклонено: статус %d", resp.StatusCode)
	}

	return nil
}
