package calendar

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"agenda/config"
	"agenda/internal/domain"
)

const jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// GoogleClient — клиент внешнего календаря поверх REST API. Авторизация —
// сервисный аккаунт с делегированием: для каждого субъекта подписывается
// RS256-ассерция, токен кэшируется до истечения срока.
type GoogleClient struct {
	cfg        config.CalendarConfig
	httpClient *http.Client
	privateKey *rsa.PrivateKey
	logger     *zap.Logger

	mu     sync.Mutex
	tokens map[string]cachedToken
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

func NewGoogleClient(cfg config.CalendarConfig, logger *zap.Logger) (*GoogleClient, error) {
	if cfg.ServiceAccount == "" || cfg.PrivateKeyPEM == "" {
		return nil, fmt.Errorf("не заданы учетные данные сервисного аккаунта календаря")
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора приватного ключа календаря: %w", err)
	}

	return &GoogleClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		privateKey: key,
		logger:     logger,
		tokens:     make(map[string]cachedToken),
	}, nil
}

func (c *GoogleClient) ListEvents(ctx context.Context, ref domain.CalendarRef, from, to time.Time) ([]EventItem, error) {
	params := url.Values{}
	params.Set("timeMin", from.UTC().Format(time.RFC3339))
	params.Set("timeMax", to.UTC().Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("showDeleted", "true")
	params.Set("maxResults", "2500")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s",
		c.cfg.BaseURL, url.PathEscape(ref.CalendarID), params.Encode())

	var response struct {
		Items []eventDTO `json:"items"`
	}

	if err := c.do(ctx, ref.Subject, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	items := make([]EventItem, 0, len(response.Items))
	for _, dto := range response.Items {
		event, err := dto.toDomain(ref.CalendarID)
		items = append(items, EventItem{Event: event, Err: err})
	}

	return items, nil
}

func (c *GoogleClient) FreeBusy(ctx context.Context, ref domain.CalendarRef, from, to time.Time) ([]domain.BusyInterval, error) {
	body := map[string]interface{}{
		"timeMin": from.UTC().Format(time.RFC3339),
		"timeMax": to.UTC().Format(time.RFC3339),
		"items":   []map[string]string{{"id": ref.CalendarID}},
	}

	var response struct {
		Calendars map[string]struct {
			Busy []struct {
				Start string `json:"start"`
				End   string `json:"end"`
			} `json:"busy"`
		} `json:"calendars"`
	}

	endpoint := c.cfg.BaseURL + "/freeBusy"
	if err := c.do(ctx, ref.Subject, http.MethodPost, endpoint, body, &response); err != nil {
		return nil, err
	}

	cal, ok := response.Calendars[ref.CalendarID]
	if !ok {
		return nil, nil
	}

	intervals := make([]domain.BusyInterval, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		start, err := time.Parse(time.RFC3339, b.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: некорректный интервал занятости: %v", domain.ErrExternalService, err)
		}
		end, err := time.Parse(time.RFC3339, b.End)
		if err != nil {
			return nil, fmt.Errorf("%w: некорректный интервал занятости: %v", domain.ErrExternalService, err)
		}
		intervals = append(intervals, domain.BusyInterval{Start: start.UTC(), End: end.UTC()})
	}

	return intervals, nil
}

func (c *GoogleClient) CreateEvent(ctx context.Context, ref domain.CalendarRef, input EventInput) (*domain.ExternalCalendarEvent, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.cfg.BaseURL, url.PathEscape(ref.CalendarID))

	var response eventDTO
	if err := c.do(ctx, ref.Subject, http.MethodPost, endpoint, eventBody(input), &response); err != nil {
		return nil, err
	}

	event, err := response.toDomain(ref.CalendarID)
	if err != nil {
		return nil, fmt.Errorf("%w: некорректный ответ при создании события: %v", domain.ErrExternalService, err)
	}

	return &event, nil
}

func (c *GoogleClient) UpdateEvent(ctx context.Context, ref domain.CalendarRef, eventID string, input EventInput) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		c.cfg.BaseURL, url.PathEscape(ref.CalendarID), url.PathEscape(eventID))

	return c.do(ctx, ref.Subject, http.MethodPatch, endpoint, eventBody(input), nil)
}

func (c *GoogleClient) DeleteEvent(ctx context.Context, ref domain.CalendarRef, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		c.cfg.BaseURL, url.PathEscape(ref.CalendarID), url.PathEscape(eventID))

	return c.do(ctx, ref.Subject, http.MethodDelete, endpoint, nil, nil)
}

func eventBody(input EventInput) map[string]interface{} {
	body := map[string]interface{}{
		"summary":     input.Title,
		"description": input.Description,
		"start":       map[string]string{"dateTime": input.Start.UTC().Format(time.RFC3339)},
		"end":         map[string]string{"dateTime": input.End.UTC().Format(time.RFC3339)},
	}

	if input.UID != "" {
		body["iCalUID"] = input.UID
	}

	if len(input.Attendees) > 0 {
		attendees := make([]map[string]string, 0, len(input.Attendees))
		for _, email := range input.Attendees {
			attendees = append(attendees, map[string]string{"email": email})
		}
		body["attendees"] = attendees
	}

	return body
}

// do выполняет запрос к API с ограничением по времени и разбирает ответ.
// Любая сетевая ошибка или не-2xx статус оборачиваются в ErrExternalService.
func (c *GoogleClient) do(ctx context.Context, subject, method, endpoint string, body interface{}, out interface{}) error {
	token, err := c.token(ctx, subject)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка сериализации запроса: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: статус %d: %s", domain.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: ошибка разбора ответа: %v", domain.ErrExternalService, err)
		}
	}

	return nil
}

// token возвращает кэшированный токен делегированного субъекта или
// обменивает новую подписанную ассерцию.
func (c *GoogleClient) token(ctx context.Context, subject string) (string, error) {
	c.mu.Lock()
	cached, ok := c.tokens[subject]
	c.mu.Unlock()

	if ok && time.Now().Before(cached.expiresAt.Add(-time.Minute)) {
		return cached.accessToken, nil
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   c.cfg.ServiceAccount,
		"sub":   subject,
		"aud":   c.cfg.TokenURL,
		"scope": c.cfg.Scope,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи ассерции: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса токена: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: обмен токена: %v", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: обмен токена: статус %d: %s", domain.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: разбор ответа токена: %v", domain.ErrExternalService, err)
	}

	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: пустой токен доступа", domain.ErrExternalService)
	}

	c.mu.Lock()
	c.tokens[subject] = cachedToken{
		accessToken: tokenResp.AccessToken,
		expiresAt:   now.Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
	}
	c.mu.Unlock()

	c.logger.Debug("получен токен календаря", zap.String("subject", subject))

	return tokenResp.AccessToken, nil
}
