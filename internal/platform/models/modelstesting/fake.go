package modelstesting

import (
	"math/rand"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/ryanlhy/webhook-ingest/internal/platform/models"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FakePriceRecord returns models.PriceRecord with fake data.
func FakePriceRecord(ops ...func(r *models.PriceRecord)) models.PriceRecord {
	record := models.PriceRecord{
		Date:       fakeDate(),
		URL:        lo.ToPtr(faker.URL()),
		EbayNumber: faker.CCNumber(),
		Price:      decimal.New(rand.Int63n(100000), -2),
		Title:      faker.Sentence(),
	}

	for _, op := range ops {
		op(&record)
	}

	return record
}

// FakeKeyValueRecord returns models.KeyValueRecord with fake data.
func FakeKeyValueRecord(ops ...func(r *models.KeyValueRecord)) models.KeyValueRecord {
	record := models.KeyValueRecord{
		KeyNum: rand.Int63n(1 << 31),
		Value:  faker.Word(),
	}

	for _, op := range ops {
		op(&record)
	}

	return record
}

// FakeRecords returns n fake price records as models.Record slice.
func FakeRecords(n int) []models.Record {
	records := make([]models.Record, 0, n)
	for range n {
		records = append(records, FakePriceRecord())
	}

	return records
}

func fakeDate() string {
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, rand.Intn(3000)).Format(models.DateLayout)
}
