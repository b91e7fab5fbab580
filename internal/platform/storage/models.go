package storage

import (
	"fmt"
	"time"

	"github.com/ryanlhy/webhook-ingest/internal/platform/models"

	pgmodels "github.com/ryanlhy/webhook-ingest/internal/platform/storage/gen/postgres/public/model"
)

//go:generate make -C ../../../ generate-db

func toDBPollRun(run *models.PollRun) *pgmodels.PollRun {
	return &pgmodels.PollRun{
		DatasetURL:       run.DatasetURL,
		FinishedAt:       run.FinishedAt,
		Success:          run.IsSuccess,
		StatusMessage:    run.StatusMessage,
		CommittedRecords: run.CommittedRecords,
		DroppedRecords:   run.DroppedRecords,
	}
}

// FromDBPollRun converts postgres poll run model into models.PollRun.
func FromDBPollRun(run pgmodels.PollRun) *models.PollRun {
	return &models.PollRun{
		ID:               int(run.ID),
		DatasetURL:       run.DatasetURL,
		CreatedAt:        run.CreatedAt,
		FinishedAt:       run.FinishedAt,
		IsSuccess:        run.Success,
		StatusMessage:    run.StatusMessage,
		CommittedRecords: run.CommittedRecords,
		DroppedRecords:   run.DroppedRecords,
	}
}

func toDBPriceRecord(record models.PriceRecord) (*pgmodels.PriceHistoryCards, error) {
	date, err := time.Parse(models.DateLayout, record.Date)
	if err != nil {
		return nil, fmt.Errorf("can't parse record date %q: %w", record.Date, err)
	}

	return &pgmodels.PriceHistoryCards{
		Date:       date,
		URL:        record.URL,
		EbayNumber: record.EbayNumber,
		Price:      record.Price,
		Title:      record.Title,
	}, nil
}

// FromDBPriceRecord converts postgres price history model into models.PriceRecord.
func FromDBPriceRecord(record pgmodels.PriceHistoryCards) models.PriceRecord {
	return models.PriceRecord{
		Date:       record.Date.Format(models.DateLayout),
		URL:        record.URL,
		EbayNumber: record.EbayNumber,
		Price:      record.Price,
		Title:      record.Title,
	}
}

func toDBKeyValue(record models.KeyValueRecord) *pgmodels.KeyValue {
	return &pgmodels.KeyValue{
		KeyNum: record.KeyNum,
		Value:  record.Value,
	}
}
