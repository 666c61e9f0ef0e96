package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iudanet/finkeeper/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с relay-сервером
type Client struct {
	httpClient  *http.Client
	baseURL     string
	deviceID    string
	deviceToken string
}

// NewClient создает новый relay клиент с учетными данными устройства
func NewClient(baseURL, deviceID, deviceToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		deviceID:    deviceID,
		deviceToken: deviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Register регистрирует устройство в кластере и возвращает его токен.
// Единственный неаутентифицированный вызов; используется при pairing.
func Register(ctx context.Context, baseURL string, req api.RegisterRequest) (*api.RegisterResponse, error) {
	client := NewClient(baseURL, req.DeviceID, "")

	var resp api.RegisterResponse
	if err := client.doRequest(ctx, http.MethodPost, "/api/v1/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}

	return &resp, nil
}

// Push отправляет зашифрованное сообщение в почтовый ящик получателя
func (c *Client) Push(ctx context.Context, recipientID, payload string) error {
	req := api.PushRequest{
		RecipientID: recipientID,
		Payload:     payload,
	}

	var resp api.PushResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/messages/push", req, &resp); err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}

	return nil
}

// Pull забирает и удаляет сообщения из почтового ящика устройства
func (c *Client) Pull(ctx context.Context) ([]api.RelayMessage, error) {
	var resp api.PullResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/messages/pull", nil, &resp); err != nil {
		return nil, fmt.Errorf("pull request failed: %w", err)
	}

	return resp.Messages, nil
}

// Heartbeat сообщает о доступности устройства и возвращает статус кластера
func (c *Client) Heartbeat(ctx context.Context) (*api.HeartbeatResponse, error) {
	var resp api.HeartbeatResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/heartbeat", nil, &resp); err != nil {
		return nil, fmt.Errorf("heartbeat request failed: %w", err)
	}

	return &resp, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.deviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.deviceToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.transportError(resp, respBody)
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// transportError строит типизированную ошибку для классификации движком
func (c *Client) transportError(resp *http.Response, body []byte) error {
	transportErr := &TransportError{
		StatusCode: resp.StatusCode,
		Message:    string(body),
	}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		transportErr.Message = errResp.Error
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		transportErr.RetryAfter = DefaultRetryAfter
		// Retry-After в секундах, по RFC также допустима HTTP-дата - ее игнорируем
		if header := resp.Header.Get("Retry-After"); header != "" {
			if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
				transportErr.RetryAfter = time.Duration(seconds) * time.Second
			}
		}
	}

	return transportErr
}
