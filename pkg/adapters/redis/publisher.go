// Package redis publishes organism records to Redis streams.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/cells/pkg/domain"
)

// DefaultPrefix is prepended to the node id to name its stream.
const DefaultPrefix = "cells:records:"

// Publisher appends records to one stream per node: XADD <prefix><nodeId>
// with the JSON record in the "record" field.
type Publisher struct {
	client *backend.Client
	prefix string
	maxLen int64
	logger *slog.Logger
}

type Option func(*Publisher)

// WithPrefix sets the stream key prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithMaxLen caps every stream to roughly n entries.
func WithMaxLen(n int64) Option {
	return func(p *Publisher) {
		p.maxLen = n
	}
}

// WithLogger sets the logger used to report failed publications.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a publisher connected to address.
func New(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		prefix: DefaultPrefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stream returns the stream key of a node.
func (p *Publisher) Stream(nodeID string) string {
	return p.prefix + nodeID
}

// Publish appends rec to the stream of its node.
func (p *Publisher) Publish(ctx context.Context, rec domain.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	err = p.client.XAdd(ctx, &backend.XAddArgs{
		Stream: p.Stream(rec.NodeID),
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]any{"record": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Observer returns a domain.Observer publishing with ctx. Observers cannot
// fail, so errors are logged.
func (p *Publisher) Observer(ctx context.Context) domain.Observer {
	return func(rec domain.Record) {
		if err := p.Publish(ctx, rec); err != nil {
			p.logger.Warn("record not published", "node", rec.NodeID, "attribute", rec.Attribute, "error", err)
		}
	}
}

// Read returns up to count records of a node, oldest first. A count of zero
// or less reads the whole stream.
func (p *Publisher) Read(ctx context.Context, nodeID string, count int64) ([]domain.Record, error) {
	var (
		msgs []backend.XMessage
		err  error
	)
	if count > 0 {
		msgs, err = p.client.XRangeN(ctx, p.Stream(nodeID), "-", "+", count).Result()
	} else {
		msgs, err = p.client.XRange(ctx, p.Stream(nodeID), "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	records := make([]domain.Record, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["record"].(string)
		if !ok {
			return nil, fmt.Errorf("stream entry %s has no record field", msg.ID)
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", msg.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
