package cmd

import "errors"

// errUnknownLogLevel is returned for an unsupported --log-level value.
var errUnknownLogLevel = errors.New("log level must be one of debug, info, warn, error")
