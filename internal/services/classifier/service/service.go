// Package service implements the classifier probe client
package service

import (
	"context"
	"encoding/json"
	"time"

	perr "gpulens/internal/platform/errors"
	"gpulens/internal/platform/logger"

	"github.com/go-resty/resty/v2"
)

// Config for the classifier client
type Config struct {
	BaseURL   string
	TimeoutMS int
	Retries   int
}

// Service implements domain.ProbePort over HTTP
type Service struct {
	client *resty.Client
	log    logger.Logger
}

type probeRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type probeResponse struct {
	Probability float64 `json:"probability"`
}

// New constructs a probe client
func New(cfg Config, log logger.Logger) *Service {
	to := cfg.TimeoutMS
	if to <= 0 {
		to = 2000
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(to) * time.Millisecond).
		SetRetryCount(cfg.Retries)

	return &Service{client: client, log: log}
}

// Probe posts the listing text and returns the model's probability.
// Any transport or decode failure comes back as an error; the caller decides
// whether to degrade or abort
func (s *Service) Probe(ctx context.Context, title, notes string) (float64, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(probeRequest{Title: title, Notes: notes}).
		Post("/v1/classify")
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeUnavailable, "classifier: probe request")
	}
	if resp.StatusCode() != 200 {
		return 0, perr.Unavailablef("classifier: probe status %d", resp.StatusCode())
	}

	var out probeResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeParse, "classifier: decode probe response")
	}
	if out.Probability < 0 || out.Probability > 1 {
		return 0, perr.Parsef("classifier: probability %v out of range", out.Probability)
	}
	return out.Probability, nil
}
