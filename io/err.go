package io

import (
	"errors"

	"github.com/lambdaschool/ls8/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull   = errors.New(f("channel full"))
	ErrChannelOutput = errors.New(f("channel has no output"))
)
