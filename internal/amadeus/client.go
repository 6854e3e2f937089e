package amadeus

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/thrivenig/travelbook/config"
	"github.com/thrivenig/travelbook/internal/domain"
)

const (
	productionBaseURL = "https://api.amadeus.com"
	testBaseURL       = "https://test.api.amadeus.com"
)

// Client talks to the Amadeus self-service APIs: offer search, location
// lookahead, token issuance, pricing confirmation and order submission.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
}

// SearchParams are the user-facing search inputs.
type SearchParams struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
}

func NewClient(cfg config.AmadeusConfig) *Client {
	base := testBaseURL
	if cfg.Hostname == "production" {
		base = productionBaseURL
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		baseURL:      base,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 20 * time.Second},
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// GetAccessToken performs the client-credentials exchange and returns a fresh
// bearer token. Tokens are short-lived; the booking workflow requests one per
// order rather than caching.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/security/oauth2/token", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", providerError(resp.StatusCode, body)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("empty access token in response")
	}
	return token.AccessToken, nil
}

// SearchOffers queries the flight-offers search endpoint. Each returned offer
// pairs the decoded fields with the raw payload so the exact offer can be
// posted back later.
func (c *Client) SearchOffers(ctx context.Context, params SearchParams) ([]FlightOffer, []json.RawMessage, error) {
	q := url.Values{}
	q.Set("originLocationCode", params.Origin)
	q.Set("destinationLocationCode", params.Destination)
	q.Set("departureDate", params.DepartureDate)
	q.Set("adults", strconv.Itoa(params.Adults))
	if params.ReturnDate != "" {
		q.Set("returnDate", params.ReturnDate)
	}

	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	body, err := c.get(ctx, token, "/v2/shopping/flight-offers?"+q.Encode())
	if err != nil {
		return nil, nil, err
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("decode offers response: %w", err)
	}

	offers := make([]FlightOffer, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var offer FlightOffer
		if err := json.Unmarshal(raw, &offer); err != nil {
			return nil, nil, fmt.Errorf("decode offer: %w", err)
		}
		offers = append(offers, offer)
	}
	return offers, envelope.Data, nil
}

// Locations looks up airports and cities by keyword for the search form's
// live lookahead.
func (c *Client) Locations(ctx context.Context, keyword string) ([]Location, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("subType", "AIRPORT,CITY")

	body, err := c.get(ctx, token, "/v1/reference-data/locations?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data []Location `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode locations response: %w", err)
	}
	return envelope.Data, nil
}

// ConfirmPricing re-prices a chosen offer and returns the confirmed
// flightOffers payload to submit with the order.
func (c *Client) ConfirmPricing(ctx context.Context, token string, offer json.RawMessage) (json.RawMessage, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type":         "flight-offers-pricing",
			"flightOffers": []json.RawMessage{offer},
		},
	}

	body, err := c.post(ctx, token, "/v1/shopping/flight-offers/pricing", payload)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			FlightOffers json.RawMessage `json:"flightOffers"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode pricing response: %w", err)
	}
	if len(envelope.Data.FlightOffers) == 0 {
		return nil, errors.New("pricing confirmation returned no offers")
	}
	return envelope.Data.FlightOffers, nil
}

// SubmitOrder places the flight order and maps the response to an OrderRecord
// carrying the order id and its PNR references.
func (c *Client) SubmitOrder(ctx context.Context, token string, confirmedOffers json.RawMessage, travelers []Traveler) (*domain.OrderRecord, error) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type":         "flight-order",
			"flightOffers": confirmedOffers,
			"travelers":    travelers,
		},
	}

	body, err := c.post(ctx, token, "/v1/booking/flight-orders", payload)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			ID                 string `json:"id"`
			AssociatedRecords []struct {
				Reference string `json:"reference"`
			} `json:"associatedRecords"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}

	record := &domain.OrderRecord{ID: envelope.Data.ID}
	for _, r := range envelope.Data.AssociatedRecords {
		record.References = append(record.References, r.Reference)
	}
	return record, nil
}

func (c *Client) get(ctx context.Context, token, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req)
}

func (c *Client) post(ctx context.Context, token, path string, payload interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, providerError(resp.StatusCode, body)
	}
	return body, nil
}

// providerError surfaces the provider's first reported error detail when the
// body carries the standard errors array, otherwise the raw status.
func providerError(status int, body []byte) error {
	var payload struct {
		Errors []struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
		if payload.Errors[0].Detail != "" {
			return errors.New(payload.Errors[0].Detail)
		}
		if payload.Errors[0].Title != "" {
			return errors.New(payload.Errors[0].Title)
		}
	}
	return fmt.Errorf("amadeus api error: status=%d", status)
}
