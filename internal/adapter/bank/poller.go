package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ebooklane/checkout-api/internal/usecase"
)

// statementEntry is one row of the bank's recent-transfers API. The memo
// field carries whatever the sender typed; exact transfer-code match only.
type statementEntry struct {
	Reference   string    `json:"reference"`
	AmountCents int64     `json:"amount_cents"`
	PostedAt    time.Time `json:"posted_at"`
}

// Poller is the pull ingestion mode: it fetches recent incoming transfers
// on an interval and pushes each through the reconciler. Confirm is
// idempotent at the state machine, so re-reading overlapping windows is safe.
type Poller struct {
	Client       *http.Client
	StatementURL string
	Interval     time.Duration
	Lookback     time.Duration
	Reconciler   *usecase.Reconciler
	Log          *slog.Logger
}

func NewPoller(statementURL string, interval, lookback time.Duration, rec *usecase.Reconciler, log *slog.Logger) *Poller {
	return &Poller{
		Client:       &http.Client{Timeout: 15 * time.Second},
		StatementURL: statementURL,
		Interval:     interval,
		Lookback:     lookback,
		Reconciler:   rec,
		Log:          log,
	}
}

// Start runs the poll loop until ctx is cancelled. Non-blocking.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.Log.Info("bank poller stopped")
				return
			case <-ticker.C:
				if err := p.ScanForConfirmations(ctx); err != nil {
					p.Log.Error("bank statement scan failed", "error", err)
				}
			}
		}
	}()
}

// ScanForConfirmations does one fetch-and-reconcile pass.
func (p *Poller) ScanForConfirmations(ctx context.Context) error {
	entries, err := p.fetch(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		err := p.Reconciler.Confirm(ctx, usecase.Confirmation{
			TransferCode: e.Reference,
			AmountCents:  e.AmountCents,
			ReceivedAt:   e.PostedAt,
		})
		switch err {
		case nil, usecase.ErrNotFound, usecase.ErrAmountMismatch, usecase.ErrInvalidState:
			// Already handled/logged by the reconciler; keep scanning.
		default:
			return err
		}
	}
	return nil
}

func (p *Poller) fetch(ctx context.Context) ([]statementEntry, error) {
	since := time.Now().Add(-p.Lookback).UTC().Format(time.RFC3339)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.StatementURL+"?since="+url.QueryEscape(since), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bank statement api: status %d", resp.StatusCode)
	}
	var entries []statementEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	return entries, nil
}
