package hv

// Channel is the read-back of one supply channel.
type Channel struct {
	Index   int
	On      bool
	Tripped bool
	VSet    float64
	VMon    float64
	IMon    float64
}

// Driver operates a high-voltage supply. Every call blocks until the
// hardware reached the requested condition or failed.
type Driver interface {
	// Configure prepares the given number of channels.
	Configure(channels int) error

	TurnOn() error
	TurnOff() error
	Standby() error
	Shoulder() error
	Peak() error

	// Recover clears trips and errors, leaving the supply off.
	Recover() error

	// Apply sets one parameter, such as "voltage" or "ch2.current".
	Apply(key, value string) error

	// Monitor reads back every channel.
	Monitor() ([]Channel, error)
}
