package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-garage/internal/logging"
	"parking-garage/internal/parking"
)

type fixedFees struct{}

func (fixedFees) ComputeFee(parking.Category, int) (decimal.Decimal, string) {
	return decimal.NewFromInt(5), "Flat"
}

func TestDailyReportSummarisesClosedDay(t *testing.T) {
	var out bytes.Buffer
	logging.SetOutput(&out)
	defer logging.SetOutput(io.Discard)

	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	clock := parking.ClockFunc(func() time.Time { return now })

	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	g, err := parking.NewGarage(parking.GarageOptions{
		Name:     "Test Garage",
		Capacity: 5,
		Fees:     fixedFees{},
		Clock:    clock,
		Logger:   logrus.NewEntry(quiet),
	})
	require.NoError(t, err)

	_, err = g.CheckIn("A1", "Car")
	require.NoError(t, err)
	_, err = g.CheckIn("B1", "Bus")
	require.NoError(t, err)
	_, _, err = g.CheckOut("A1")
	require.NoError(t, err)
	_, err = g.ConfirmPayment("A1")
	require.NoError(t, err)

	// Midnight run reports on the previous day.
	now = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	job, err := NewDailyReport(g, "0 0 * * *")
	require.NoError(t, err)

	_, ok := job.Last()
	assert.False(t, ok)

	job.Run()

	summary, ok := job.Last()
	require.True(t, ok)
	assert.Equal(t, "2024-03-04", summary.Date)
	assert.Equal(t, 2, summary.Entries)
	assert.Equal(t, 1, summary.Exits)
	assert.Equal(t, 1, summary.Active)
	assert.True(t, decimal.NewFromInt(5).Equal(summary.Revenue))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
	assert.Equal(t, "daily summary", entry["message"])
	assert.Equal(t, "2024-03-04", entry["date"])
	assert.Equal(t, "5.00", entry["revenue"])
}

func TestDailyReportRejectsBadSchedule(t *testing.T) {
	_, err := NewDailyReport(nil, "every tuesday")
	assert.Error(t, err)
}

func TestDailyReportStartStop(t *testing.T) {
	logging.SetOutput(io.Discard)

	job, err := NewDailyReport(nil, "@daily")
	require.NoError(t, err)

	job.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job.Stop(ctx)
}
