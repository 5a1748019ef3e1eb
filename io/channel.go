// Package io provides the output channels that receive values printed
// by the LS8 machine. A Tape writes each value as a decimal line to an
// io.Writer, and a Temporary keeps the values in memory.
package io

import (
	"iter"
)

// Channel defines the interface for the LS8 output collaborator.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Send emits a single register value.
	Send(value uint8) error
}

// Recorder is a Channel which retains what it was sent.
type Recorder interface {
	Channel
	// Values returns an iterator over the values sent since the last Rewind.
	Values() iter.Seq[uint8]
}
