package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/infra/queue"
)

const DefaultBaseURL = "https://liguemedicina.kommo.com/api/v4"

// status "Novo lead" do pipeline de captação
const newLeadStatusID = 96648371

var ErrNotConfigured = errors.New("kommo não configurado")

type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(apiToken, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// SyncLead leva um evento lead.captured para o pipeline do Kommo.
func (c *Client) SyncLead(ctx context.Context, event queue.FunnelEvent) error {
	_, err := c.CreateLead(ctx, CreateLeadInput{
		Name:       event.Name,
		Email:      event.Email,
		Phone:      event.PhoneNumber,
		Origin:     event.Origin,
		OriginFont: event.OriginFont,
		Brand:      event.Brand,
	})
	return err
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" {
		return 0, queue.Permanent(ErrNotConfigured)
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	tags := []map[string]any{{"name": "funil_site"}}
	if input.Origin != "" {
		tags = append(tags, map[string]any{"name": input.Origin})
	}
	if input.OriginFont != "" {
		tags = append(tags, map[string]any{"name": input.OriginFont})
	}

	leadData := []map[string]any{
		{
			"name":      leadTitle(input),
			"status_id": newLeadStatusID,
			"_embedded": map[string]any{
				"tags":     tags,
				"contacts": []map[string]any{{"id": contactID}},
			},
		},
	}

	var result embeddedResponse
	if err := c.do(ctx, http.MethodPost, "/leads", leadData, &result, http.StatusOK); err != nil {
		return 0, fmt.Errorf("erro ao criar lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead não criado")
	}

	leadID := result.Embedded.Leads[0].ID
	c.logger.Info("kommo: lead criado", zap.Int("kommo_lead_id", leadID), zap.Int("contact_id", contactID))
	return leadID, nil
}

func leadTitle(input CreateLeadInput) string {
	if input.Brand != "" {
		return fmt.Sprintf("%s - %s", input.Name, input.Brand)
	}
	return input.Name
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	query := input.Email
	if query == "" {
		query = input.Phone
	}
	if query != "" {
		contactID, err := c.findContact(ctx, query)
		if err != nil {
			return 0, err
		}
		if contactID > 0 {
			return contactID, nil
		}
	}
	return c.createContact(ctx, input)
}

// findContact devolve 0 quando nada bate com a busca.
func (c *Client) findContact(ctx context.Context, query string) (int, error) {
	var result embeddedResponse
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(query), nil, &result, http.StatusOK, http.StatusNoContent)
	if err != nil {
		return 0, fmt.Errorf("erro ao buscar contato: %w", err)
	}
	if len(result.Embedded.Contacts) > 0 {
		return result.Embedded.Contacts[0].ID, nil
	}
	return 0, nil
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	var fields []map[string]any
	if input.Phone != "" {
		fields = append(fields, map[string]any{
			"field_code": "PHONE",
			"values":     []map[string]any{{"value": input.Phone, "enum_code": "WORK"}},
		})
	}
	if input.Email != "" {
		fields = append(fields, map[string]any{
			"field_code": "EMAIL",
			"values":     []map[string]any{{"value": input.Email, "enum_code": "WORK"}},
		})
	}

	contactData := []map[string]any{
		{"name": input.Name, "custom_fields_values": fields},
	}

	var result embeddedResponse
	if err := c.do(ctx, http.MethodPost, "/contacts", contactData, &result, http.StatusOK, http.StatusCreated); err != nil {
		return 0, fmt.Errorf("erro ao criar contato: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("erro ao obter ID do contato criado")
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, okStatus ...int) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	accepted := false
	for _, s := range okStatus {
		if resp.StatusCode == s {
			accepted = true
			break
		}
	}
	if !accepted {
		err := fmt.Errorf("status %d - %s", resp.StatusCode, string(raw))
		if permanentStatus(resp.StatusCode) {
			return queue.Permanent(err)
		}
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// permanentStatus: 4xx não melhora com retry, exceto timeout e rate limit.
func permanentStatus(code int) bool {
	return code >= 400 && code < 500 &&
		code != http.StatusRequestTimeout && code != http.StatusTooManyRequests
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
