package config

import "errors"

var (
	ErrInvalid       = errors.New("config: invalid problem")
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrUnknownParam  = errors.New("config: unknown parameter")
)
