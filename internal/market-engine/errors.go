package marketengine

import "errors"

var (
	ErrInstrumentExists   = errors.New("instrument already exists")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrInvalidSymbol      = errors.New("invalid symbol")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrEngineStopped      = errors.New("engine stopped")
)
