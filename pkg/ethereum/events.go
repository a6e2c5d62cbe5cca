package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/chainsafe/bridge-submitter/internal/metrics"
	"github.com/chainsafe/bridge-submitter/pkg/ethereum/contracts"
	"github.com/chainsafe/bridge-submitter/pkg/submission"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// maxPollFailures is the number of consecutive failed polls reported as a
// stream error.
const maxPollFailures = 3

type eventHandlers struct {
	kind    string
	onEvent func(submission.CompletionEvent)
	onError func(error)
}

func (h eventHandlers) deliver(log types.Log) {
	metrics.EventsDetected.WithLabelValues(h.kind).Inc()
	h.onEvent(submission.CompletionEvent{
		Contract:    log.Address,
		EventKind:   h.kind,
		TxHash:      log.TxHash,
		BlockNumber: log.BlockNumber,
	})
}

// SubscribeCompletionEvent watches corr.Contract for corr.EventKind from
// corr.FromBlock on. It uses a WebSocket subscription when one is configured
// and polls otherwise. At most one event is delivered; the returned func stops
// the watch and may be called any number of times.
func (c *Client) SubscribeCompletionEvent(
	ctx context.Context,
	corr submission.Correlation,
	onEvent func(submission.CompletionEvent),
	onError func(error),
) (func(), error) {
	topic, ok := contracts.EventID(corr.EventKind)
	if !ok {
		return nil, fmt.Errorf("unknown completion event %q", corr.EventKind)
	}

	query := ethereum.FilterQuery{
		Addresses: []common.Address{corr.Contract},
		Topics:    [][]common.Hash{{topic}},
	}
	h := eventHandlers{kind: corr.EventKind, onEvent: onEvent, onError: onError}

	watchCtx, cancel := context.WithCancel(ctx)
	var once sync.Once
	unsubscribe := func() { once.Do(cancel) }

	if c.wsBackend != nil {
		logs := make(chan types.Log, 16)
		sub, err := c.wsBackend.SubscribeFilterLogs(watchCtx, query, logs)
		if err != nil {
			unsubscribe()
			return nil, fmt.Errorf("failed to subscribe to %s logs: %w", corr.EventKind, err)
		}
		go func() {
			defer sub.Unsubscribe()
			c.streamLogs(watchCtx, query, corr.FromBlock, logs, sub, h)
		}()
		return unsubscribe, nil
	}

	go c.pollLogs(watchCtx, query, corr.FromBlock, h)
	return unsubscribe, nil
}

// streamLogs first back-fills from fromBlock, since the event may already be
// in a mined block, then waits on the live subscription.
func (c *Client) streamLogs(
	ctx context.Context,
	query ethereum.FilterQuery,
	fromBlock uint64,
	logs <-chan types.Log,
	sub ethereum.Subscription,
	h eventHandlers,
) {
	found, _, err := c.filterRange(ctx, query, fromBlock)
	if err != nil {
		c.logger.Warn("Failed to back-fill completion events", zap.Error(err))
	}
	if found != nil {
		h.deliver(*found)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if ctx.Err() == nil {
				h.onError(fmt.Errorf("log subscription failed: %w", err))
			}
			return
		case log := <-logs:
			if log.Removed || log.BlockNumber < fromBlock {
				continue
			}
			h.deliver(log)
			return
		}
	}
}

// pollLogs checks for the event on every polling tick, starting immediately.
func (c *Client) pollLogs(ctx context.Context, query ethereum.FilterQuery, fromBlock uint64, h eventHandlers) {
	c.logger.Debug("Starting completion event poller", zap.Uint64("from_block", fromBlock))

	interval := c.config.PollingInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	currentBlock := fromBlock
	failures := 0
	for {
		found, next, err := c.filterRange(ctx, query, currentBlock)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			failures++
			c.logger.Warn("Failed to poll completion events",
				zap.Int("consecutive_failures", failures),
				zap.Error(err))
			if failures >= maxPollFailures {
				h.onError(err)
				return
			}
		case found != nil:
			h.deliver(*found)
			return
		default:
			failures = 0
			currentBlock = next
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// filterRange looks for the first matching log between fromBlock and the
// latest block. It returns the block to continue from when nothing matched.
func (c *Client) filterRange(ctx context.Context, query ethereum.FilterQuery, fromBlock uint64) (*types.Log, uint64, error) {
	latest, err := c.GetLatestBlockNumber(ctx)
	if err != nil {
		return nil, fromBlock, err
	}
	if latest < fromBlock {
		return nil, fromBlock, nil
	}

	query.FromBlock = new(big.Int).SetUint64(fromBlock)
	query.ToBlock = new(big.Int).SetUint64(latest)

	logs, err := c.backend.FilterLogs(ctx, query)
	if err != nil {
		return nil, fromBlock, fmt.Errorf("failed to filter logs: %w", err)
	}
	for i := range logs {
		if !logs[i].Removed {
			return &logs[i], latest + 1, nil
		}
	}
	return nil, latest + 1, nil
}
