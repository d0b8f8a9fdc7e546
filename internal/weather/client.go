// Package weather は天気予報APIから週間の平均気温を取得する。
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

const forecastDays = 7

var (
	// ErrUnavailable は天気APIに到達できない、または200以外を返した場合のエラー。
	ErrUnavailable = errors.New("weather API unavailable")
	// ErrMalformed はレスポンスを予報として解釈できない場合のエラー。
	ErrMalformed = errors.New("malformed weather response")
)

// forecastResponse はforecast.jsonレスポンスのうち使用する部分。
type forecastResponse struct {
	Forecast *struct {
		ForecastDay []struct {
			Day *struct {
				AvgTempC *float64 `json:"avgtemp_c"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Client はweatherapi.comの予報APIクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
}

// NewClient はClientの新しいインスタンスを生成する。
// httpClientのタイムアウトが1回の呼び出しの上限となる。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// WeeklyAverage は都市の7日間予報から日平均気温の平均を求め、
// "Average Temperature: 12.3°C" 形式の文字列で返す。
func (c *Client) WeeklyAverage(ctx context.Context, city string) (string, error) {
	avg, err := c.averageTemperature(ctx, city)
	if err != nil {
		return "", err
	}
	return FormatAverage(avg), nil
}

// FormatAverage は平均気温をプロンプト用の文字列に整形する。
func FormatAverage(avg float64) string {
	return fmt.Sprintf("Average Temperature: %.1f°C", avg)
}

func (c *Client) averageTemperature(ctx context.Context, city string) (float64, error) {
	reqURL, err := url.Parse(c.baseURL + "/forecast.json")
	if err != nil {
		return 0, fmt.Errorf("%w: invalid base URL: %v", ErrUnavailable, err)
	}
	q := reqURL.Query()
	q.Set("key", c.apiKey)
	q.Set("q", city)
	q.Set("days", fmt.Sprint(forecastDays))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// エラーメッセージにはAPIキーを含むURLが入るためログには出さない
		c.logger.Error("weather API request failed")
		return 0, fmt.Errorf("%w: request failed", ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("weather API returned error status",
			slog.Int("http_status", resp.StatusCode),
		)
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	avg, err := parseAverage(body)
	if err != nil {
		c.logger.Warn("failed to parse weather response",
			slog.String("error", err.Error()),
		)
		return 0, err
	}
	return avg, nil
}

// parseAverage はforecast.forecastday[].day.avgtemp_c の平均を返す。
func parseAverage(body []byte) (float64, error) {
	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if fr.Forecast == nil {
		return 0, fmt.Errorf("%w: missing forecast", ErrMalformed)
	}
	days := fr.Forecast.ForecastDay
	if len(days) == 0 {
		return 0, fmt.Errorf("%w: no forecast days", ErrMalformed)
	}

	var sum float64
	for i, d := range days {
		if d.Day == nil || d.Day.AvgTempC == nil {
			return 0, fmt.Errorf("%w: day %d has no avgtemp_c", ErrMalformed, i)
		}
		sum += *d.Day.AvgTempC
	}
	return sum / float64(len(days)), nil
}
