package ports

import "github.com/bft-labs/framechat/pkg/log"

// Logger is the structured logger used throughout the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported so internal packages need only one import.
var (
	String   = log.String
	Int      = log.Int
	Uint64   = log.Uint64
	Bool     = log.Bool
	Duration = log.Duration
	Bytes    = log.Bytes
	Err      = log.Err
	Any      = log.Any
)
