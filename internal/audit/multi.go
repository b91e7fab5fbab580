package audit

import (
	"context"
	"errors"
)

// Recorder keeps raw payloads for later inspection.
type Recorder interface {
	Record(ctx context.Context, source string, raw []byte) error
}

// Multi records payload in every recorder.
type Multi []Recorder

// Record records payload in all recorders, even when some of them fail.
// It returns joined errors of failed recorders.
func (m Multi) Record(ctx context.Context, source string, raw []byte) error {
	var errs []error
	for _, recorder := range m {
		if err := recorder.Record(ctx, source, raw); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
