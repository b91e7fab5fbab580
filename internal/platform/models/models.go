package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is layout of canonical record dates.
const DateLayout = time.DateOnly

// Record is canonical record ready to be persisted.
// It is implemented only by PriceRecord and KeyValueRecord.
type Record interface {
	isRecord()
}

// PriceRecord is canonical price history record.
type PriceRecord struct {
	Date       string
	URL        *string
	EbayNumber string
	Price      decimal.Decimal
	Title      string
}

func (PriceRecord) isRecord() {}

// KeyValueRecord is legacy key/value pair.
type KeyValueRecord struct {
	KeyNum int64
	Value  string
}

func (KeyValueRecord) isRecord() {}

// ExtractionResult contains extracted record with extraction error if there is any.
type ExtractionResult struct {
	Record Record
	// Path locates the extracted item inside the payload, e.g. data[0].results[2].
	Path  string
	Error error
}

// PersistResult is result of persisting a sequence of records.
type PersistResult struct {
	// Committed is number of records written before FailedAt.
	Committed int
	// FailedAt is index of the record which failed to be written.
	FailedAt *int
	Err      error
}

// PollRun is external dataset poll cycle model.
type PollRun struct {
	ID               int
	DatasetURL       string
	CreatedAt        time.Time
	FinishedAt       *time.Time
	IsSuccess        *bool
	StatusMessage    *string
	CommittedRecords *int32
	DroppedRecords   *int32
}
