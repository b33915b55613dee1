package sim

import "github.com/aethergs/server/internal/wire"

// Command is one entry in a world's FIFO mailbox. Commands are processed
// strictly in arrival order by the world goroutine; once dequeued they run
// to completion.
type Command interface {
	isCommand()
}

// cmdCreate builds the world from a snapshot blob (nil for a fresh player).
type cmdCreate struct {
	snapshot []byte
	output   wire.Output
	version  string
}

// cmdInput injects one client packet. immediate asks for a synchronous tick
// right after injection instead of waiting for the next periodic update.
type cmdInput struct {
	head      wire.PacketHead
	cmdID     uint16
	name      string
	payload   []byte
	immediate bool
}

// cmdUpdate is the periodic world tick.
type cmdUpdate struct{}

// cmdStop saves and tears the world down.
type cmdStop struct {
	done chan struct{}
}

func (cmdCreate) isCommand() {}
func (cmdInput) isCommand()  {}
func (cmdUpdate) isCommand() {}
func (cmdStop) isCommand()   {}
