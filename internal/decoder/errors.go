package decoder

import "errors"

// ErrNotSequence is returned when nested results payload is not a JSON array.
var ErrNotSequence = errors.New("payload is not a sequence")
