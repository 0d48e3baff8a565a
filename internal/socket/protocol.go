package socket

// Message represents a command sent to the running comparetui instance
type Message struct {
	Command string `json:"command"`
	Target  string `json:"target,omitempty"` // Setting name for toggle commands

	// ResponseChan carries the reply for synchronous commands. Never sent
	// over the wire, the server attaches it before queueing.
	ResponseChan chan *Response `json:"-"`
}

// Response represents the response from the server
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Command types
const (
	CommandCompare   = "compare"
	CommandRecompare = "recompare"
	CommandNext      = "next"
	CommandPrev      = "prev"
	CommandFirst     = "first"
	CommandLast      = "last"
	CommandToggle    = "toggle"
	CommandStatus    = "status"
	CommandDump      = "dump"
	CommandQuit      = "quit"
)

// ValidCommand reports whether cmd names a known command.
func ValidCommand(cmd string) bool {
	switch cmd {
	case CommandCompare, CommandRecompare, CommandNext, CommandPrev,
		CommandFirst, CommandLast, CommandToggle, CommandStatus,
		CommandDump, CommandQuit:
		return true
	}
	return false
}

// SyncCommand reports whether cmd expects a reply computed by the
// application rather than an immediate queue acknowledgement.
func SyncCommand(cmd string) bool {
	return cmd == CommandStatus || cmd == CommandDump
}
