// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// openMeteo fetches the current weather from the open-meteo.com forecast
// API. It needs no key.
type openMeteo struct {
	client   *http.Client
	endpoint string
	lat, lon float64
}

func newOpenMeteo(lat, lon float64) *openMeteo {
	return &openMeteo{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: "https://api.open-meteo.com/v1/forecast",
		lat:      lat,
		lon:      lon,
	}
}

func (o *openMeteo) url() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(o.lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(o.lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code")
	q.Set("forecast_days", "1")
	return o.endpoint + "?" + q.Encode()
}

// Current implements weatherProvider.
func (o *openMeteo) Current(ctx context.Context) (float64, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url(), nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("open-meteo: %s", resp.Status)
	}
	var body struct {
		Current *struct {
			Temperature *float64 `json:"temperature_2m"`
			WeatherCode *int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("open-meteo: %w", err)
	}
	if body.Current == nil || body.Current.Temperature == nil || body.Current.WeatherCode == nil {
		return 0, 0, errors.New("open-meteo: incomplete response")
	}
	return *body.Current.Temperature, *body.Current.WeatherCode, nil
}
