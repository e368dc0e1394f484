package services

import "github.com/pkg/errors"

// Common errors
var (
	ErrPrintJobNotFound    = errors.New("print job not found")
	ErrSpoolNotFound       = errors.New("spool not found")
	ErrFilamentNotFound    = errors.New("filament not found")
	ErrWebSocketConnection = errors.New("websocket connection error")
)
