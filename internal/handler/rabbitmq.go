package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/ryanlhy/webhook-ingest/internal/platform"
	"github.com/ryanlhy/webhook-ingest/internal/platform/rabbitmq"
	"github.com/ryanlhy/webhook-ingest/pkg/v1/commander"
)

//go:generate mockery --name Consumer --filename consumer.go

// Consumer consumes messages from queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler rabbitmq.HandlerFunc) (<-chan error, error)
}

// RMQHandler handles poll commands received from RMQ.
type RMQHandler struct {
	consumer Consumer
	poller   Poller
	logger   *zerolog.Logger
}

// NewRMQHandler returns new RMQHandler.
func NewRMQHandler(consumer Consumer, poller Poller, logger *zerolog.Logger) *RMQHandler {
	return &RMQHandler{
		consumer: consumer,
		poller:   poller,
		logger:   logger,
	}
}

// Start starts consuming and handling poll commands from RMQ.
// Failed commands are rejected without requeue.
func (h *RMQHandler) Start(ctx context.Context, queue string) error {
	errorsChan, err := h.consumer.Consume(ctx, queue, h.handleMessage)
	if err != nil {
		return err
	}

	go func() {
		for err := range errorsChan {
			h.logger.Error().
				Err(err).
				Msg("can't handle message")
		}
	}()

	return nil
}

func (h *RMQHandler) handleMessage(ctx context.Context, message []byte) error {
	cmd, err := decodeMessage(message)
	if err != nil {
		return err
	}

	h.logger.Debug().
		Str("trigger", cmd.Trigger).
		Msg("poll started")

	outcome, err := h.poller.PollOnce(ctx)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		h.logger.Info().
			Str("trigger", cmd.Trigger).
			Msg("poll skipped, previous poll is still running")
		return nil
	}
	if err != nil {
		return fmt.Errorf("poll failed: %w", err)
	}

	h.logger.Debug().
		Str("trigger", cmd.Trigger).
		Int("committed", outcome.Committed).
		Int("dropped", outcome.Dropped).
		Msg("poll finished")

	return nil
}

func decodeMessage(msg []byte) (*commander.PollCommand, error) {
	var cmd commander.PollCommand
	err := json.Unmarshal(msg, &cmd)
	if err != nil {
		return nil, fmt.Errorf("can't decode poll command: %w", err)
	}

	return &cmd, nil
}
