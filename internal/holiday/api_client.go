package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// APIClient fetches national holidays from a Calendarific-compatible
// endpoint. Credentials come from HOLIDAY_API_URL / HOLIDAY_API_KEY /
// HOLIDAY_API_COUNTRY.
type APIClient struct {
	baseURL string
	apiKey  string
	country string
	client  *http.Client
}

func NewAPIClient(baseURL, apiKey, country string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		country: country,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func NewAPIClientFromEnv() *APIClient {
	baseURL := os.Getenv("HOLIDAY_API_URL")
	if baseURL == "" {
		baseURL = "https://calendarific.com/api/v2/holidays"
	}
	country := os.Getenv("HOLIDAY_API_COUNTRY")
	if country == "" {
		country = "PH"
	}
	return NewAPIClient(baseURL, os.Getenv("HOLIDAY_API_KEY"), country)
}

type apiHoliday struct {
	Name string `json:"name"`
	Date struct {
		ISO string `json:"iso"`
	} `json:"date"`
}

type apiResponse struct {
	Response struct {
		Holidays []apiHoliday `json:"holidays"`
	} `json:"response"`
}

// FetchYear returns the national holidays of one calendar year. The ISO
// field sometimes carries a full timestamp, so only the date part is kept.
func (c *APIClient) FetchYear(ctx context.Context, year int) ([]Holiday, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("country", c.country)
	q.Set("year", fmt.Sprintf("%d", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday api returned status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	holidays := make([]Holiday, 0, len(body.Response.Holidays))
	for _, h := range body.Response.Holidays {
		iso := h.Date.ISO
		if len(iso) > 10 {
			iso = iso[:10]
		}
		date, err := time.Parse("2006-01-02", iso)
		if err != nil {
			continue
		}
		holidays = append(holidays, Holiday{
			Date:   date,
			Name:   h.Name,
			Source: SourceAPI,
		})
	}
	return holidays, nil
}
