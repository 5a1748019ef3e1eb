package io

import (
	"iter"
	"slices"
)

// Temporary retains sent values in memory, up to Capacity values.
// A zero Capacity is unbounded.
type Temporary struct {
	Capacity int

	Data []uint8
}

var _ Recorder = (*Temporary)(nil)

// Rewind discards all retained values.
func (temp *Temporary) Rewind() {
	temp.Data = temp.Data[:0]
}

// Send appends a value. Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Send(value uint8) (err error) {
	if temp.Capacity > 0 && len(temp.Data) >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Data = append(temp.Data, value)

	return
}

// Values returns an iterator over the retained values, oldest first.
func (temp *Temporary) Values() iter.Seq[uint8] {
	return slices.Values(temp.Data)
}
