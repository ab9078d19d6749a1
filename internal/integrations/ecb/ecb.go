package ecb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
)

// Client fetches the European Central Bank daily reference rates
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new ECB client
func NewClient(url string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// sendRequest downloads the reference rate document
func (c *Client) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("ECB XML response: %s", string(body))

	return body, nil
}

// ParseRates extracts the EUR based rate table from an eurofxref document
func ParseRates(rawBody []byte) (map[string]float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	cubes := doc.FindElements("//Cube[@currency]")
	if len(cubes) == 0 {
		return nil, fmt.Errorf("no rate data found in XML")
	}

	rates := map[string]float64{"EUR": 1}
	for _, cube := range cubes {
		code := strings.ToUpper(cube.SelectAttrValue("currency", ""))
		rate, err := strconv.ParseFloat(cube.SelectAttrValue("rate", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rate for %s: %w", code, err)
		}
		if rate <= 0 {
			continue
		}
		rates[code] = rate
	}
	return rates, nil
}

// Rebase turns a EUR based table into rates from base to every other currency
func Rebase(eurRates map[string]float64, base string) (map[string]float64, error) {
	baseRate, ok := eurRates[base]
	if !ok {
		return nil, fmt.Errorf("currency %s not published by ECB", base)
	}
	out := make(map[string]float64, len(eurRates))
	for code, rate := range eurRates {
		out[code] = rate / baseRate
	}
	return out, nil
}

// Rates returns rates from base to every published currency
func (c *Client) Rates(ctx context.Context, base string) (map[string]float64, error) {
	body, err := c.sendRequest(ctx)
	if err != nil {
		return nil, err
	}

	eurRates, err := ParseRates(body)
	if err != nil {
		return nil, err
	}

	rates, err := Rebase(eurRates, strings.ToUpper(base))
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved %d ECB rates for base %s", len(rates), base)
	return rates, nil
}
