package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-jet/jet/v2/qrm"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models/modelstesting"
	"github.com/ryanlhy/webhook-ingest/internal/platform/storage"
	"github.com/ryanlhy/webhook-ingest/internal/platform/storage/storagetesting"
	"github.com/stretchr/testify/require"
)

const (
	contentType = "Content-Type"
	waitTimeout = 10 * time.Second
)

// WaitForRunToBeFinished is blocking helper function, returns latest run of the dataset after it is finished.
// Runs with ID lower or equal to afterID are ignored.
func WaitForRunToBeFinished(t *testing.T, queryable qrm.Queryable, datasetURL string, afterID int) *models.PollRun {
	t.Helper()

	var latestRun *models.PollRun
	require.Eventually(t, func() bool {
		dbRun := storagetesting.GetLatestPollRun(t, queryable, datasetURL)
		if dbRun == nil || int(dbRun.ID) <= afterID || dbRun.FinishedAt == nil {
			return false
		}
		latestRun = storage.FromDBPollRun(*dbRun)
		return true
	}, waitTimeout, 250*time.Millisecond, "poll run wasn't finished in time")

	return latestRun
}

// GetPriceRecords is helper function for getting price records from db ordered by ID.
func GetPriceRecords(t *testing.T, queryable qrm.Queryable) []models.PriceRecord {
	t.Helper()

	dbRecords := storagetesting.GetPriceRecords(t, queryable)

	records := make([]models.PriceRecord, len(dbRecords))
	for ix := range dbRecords {
		records[ix] = storage.FromDBPriceRecord(dbRecords[ix])
	}

	return records
}

// PrepareMockedDatasetServer is helper function for mocking dataset http server.
// Returns function for setting dataset to return, dataset number is from 0 to len(datasets) exclusive.
func PrepareMockedDatasetServer(t *testing.T, datasets [][]byte, statusCode int) (*httptest.Server, func(int)) {
	t.Helper()

	var mu sync.Mutex
	datasetToReturnIx := 0

	srv := httptest.NewServer(http.HandlerFunc(func(wrt http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		wrt.Header().Add(contentType, "application/json")
		wrt.WriteHeader(statusCode)
		_, _ = wrt.Write(datasets[datasetToReturnIx])
	}))

	t.Cleanup(func() {
		srv.Close()
	})

	return srv, func(i int) {
		mu.Lock()
		defer mu.Unlock()
		datasetToReturnIx = i
	}
}

// DeleteRMQQueueOnCleanup is helper function deleting RMQ queue after test is finished.
func DeleteRMQQueueOnCleanup(t *testing.T, connection *amqp.Connection, queueName string) {
	t.Helper()

	t.Cleanup(func() {
		channel, err := connection.Channel()
		if err != nil {
			require.FailNow(t, "can't open RabbitMQ channel", err)
		}
		defer channel.Close()

		if _, err := channel.QueueDelete(queueName, false, false, true); err != nil {
			require.FailNow(t, "can't delete queue", queueName, err)
		}
	})
}

// GenerateTestData generates n price records, each with its own url.
func GenerateTestData(t *testing.T, n int) []models.PriceRecord {
	t.Helper()

	results := make([]models.PriceRecord, n)
	for ix := range n {
		results[ix] = modelstesting.FakePriceRecord()
	}

	return results
}

// RecordsToDataset is helper function which converts records to dataset items with nested results.
func RecordsToDataset(t *testing.T, records []models.PriceRecord) []byte {
	t.Helper()

	type result struct {
		Date       string `json:"date"`
		EbayNumber string `json:"ebay_number"`
		Price      string `json:"price"`
		Text       string `json:"text"`
	}
	type item struct {
		URL     *string  `json:"url"`
		Results []result `json:"results"`
	}

	items := make([]item, len(records))
	for ix := range records {
		items[ix] = item{
			URL: records[ix].URL,
			Results: []result{{
				Date:       records[ix].Date,
				EbayNumber: "item-" + records[ix].EbayNumber,
				Price:      "$" + records[ix].Price.StringFixed(2),
				Text:       records[ix].Title,
			}},
		}
	}

	dataset, err := json.Marshal(items)
	if err != nil {
		require.FailNow(t, "can't encode dataset", err)
	}

	return dataset
}

// RecordsToFlatArrays is helper function which converts records to FlatArrays payload.
func RecordsToFlatArrays(t *testing.T, records []models.PriceRecord) []byte {
	t.Helper()

	data := make([]map[string][]string, len(records))
	for ix := range records {
		date, err := time.Parse(models.DateLayout, records[ix].Date)
		if err != nil {
			require.FailNow(t, "can't parse record date", err)
		}

		data[ix] = map[string][]string{
			"Date":        {date.Format("02-01-06")},
			"ebay_number": {records[ix].EbayNumber},
			"price":       {records[ix].Price.StringFixed(2)},
			"title":       {records[ix].Title},
		}
		if records[ix].URL != nil {
			data[ix]["__url"] = []string{*records[ix].URL}
		}
	}

	payload, err := json.Marshal(map[string]any{"data": data})
	if err != nil {
		require.FailNow(t, "can't encode payload", err)
	}

	return payload
}
