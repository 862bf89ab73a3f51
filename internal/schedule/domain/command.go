package domain

import (
	contractdomain "github.com/railzwaylabs/contractflow/internal/contract/domain"
)

type CommandStatus string

const (
	CommandPending   CommandStatus = "pending"
	CommandValidated CommandStatus = "validated"
	CommandSkipped   CommandStatus = "skipped"
	CommandFailed    CommandStatus = "failed"
	CommandCompleted CommandStatus = "completed"
)

// Command is the in-memory unit of work for one contract inside one scheduler
// run. It is never persisted and lives only for the duration of the pass.
type Command struct {
	Contract contractdomain.Contract
	Lines    []contractdomain.ContractLine
	Status   CommandStatus
	Reason   string
}

func NewCommand(contract contractdomain.Contract) *Command {
	return &Command{Contract: contract, Status: CommandPending}
}

func (c *Command) MarkValidated() { c.Status = CommandValidated }

func (c *Command) MarkSkipped(reason string) {
	c.Status = CommandSkipped
	c.Reason = reason
}

func (c *Command) MarkFailed(reason string) {
	c.Status = CommandFailed
	c.Reason = reason
}

func (c *Command) MarkCompleted() { c.Status = CommandCompleted }
