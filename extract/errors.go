package extract

import "errors"

// ErrUnknownStrategy indicates no extractor is registered for a strategy.
var ErrUnknownStrategy = errors.New("unknown extraction strategy")
