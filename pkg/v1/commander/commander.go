package commander

import (
	"context"
	"encoding/json"
	"fmt"
)

//go:generate mockery --name Sender --filename sender.go

// Sender sends messages.
type Sender interface {
	Send(context.Context, []byte) error
}

// PollCommand asks ingest service to run single poll cycle of its dataset.
type PollCommand struct {
	// Trigger names who requested the poll, it is only logged.
	Trigger string `json:"trigger"`
}

// PollCommander sends poll commands.
type PollCommander struct {
	sender Sender
}

// NewPollCommander returns new PollCommander using provided sender for sending messages.
func NewPollCommander(sender Sender) PollCommander {
	return PollCommander{
		sender: sender,
	}
}

// SendPollCommand sends poll command with provided trigger.
func (c PollCommander) SendPollCommand(ctx context.Context, trigger string) error {
	cmd := PollCommand{
		Trigger: trigger,
	}

	cmdMsg, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("can't marshal poll command: %w", err)
	}

	if err := c.sender.Send(ctx, cmdMsg); err != nil {
		return fmt.Errorf("can't send poll command: %w", err)
	}

	return nil
}
