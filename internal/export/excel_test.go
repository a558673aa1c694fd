package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"miles/internal/models"
)

func TestWriteWorkbook(t *testing.T) {
	records := []models.BookingRecord{
		{
			BookingID:       "MILES-1756600000000",
			CustomerName:    "Maya Chen",
			CustomerEmail:   "maya@example.com",
			ExperienceTitle: "Street Food Tour",
			BookingDate:     "2026-09-12",
			NumberOfGuests:  3,
			TotalPrice:      135,
			Currency:        "USD",
			Status:          models.StatusConfirmed,
		},
		{
			BookingID:       "MILES-1756600001000",
			CustomerName:    "Jon Hill",
			ExperienceTitle: "Tea Ceremony",
			NumberOfGuests:  1,
			TotalPrice:      75,
			Status:          models.StatusConfirmed,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExporter().Write(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Booking ID", rows[0][0])
	assert.Equal(t, "MILES-1756600000000", rows[1][0])
	assert.Equal(t, "Maya Chen", rows[1][1])
	assert.Equal(t, "135", rows[1][7])
	assert.Equal(t, "Tea Ceremony", rows[2][3])
}

func TestWriteEmptyWorkbookKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Write(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(headers))
}

func TestFilename(t *testing.T) {
	ts := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "bookings-2026-08-31.xlsx", Filename(ts))
}
