package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rideinsights/backend/internal/dataset"
	"github.com/rideinsights/backend/pkg/logger"
)

func newTestNormalizer() *Normalizer {
	return New(logger.Nop())
}

func TestNormalize_TrimsColumnNames(t *testing.T) {
	tbl := dataset.NewTable(" Booking_ID ", "Vehicle_Type")
	tbl.Rows = []dataset.Record{
		{" Booking_ID ": "CNR100", "Vehicle_Type": "Mini"},
	}

	out, err := newTestNormalizer().Normalize(tbl)
	require.NoError(t, err)

	assert.Equal(t, []string{"Booking_ID", "Vehicle_Type"}, out.Columns)
	assert.Equal(t, "CNR100", out.Rows[0].String(dataset.ColBookingID))
	assert.False(t, out.Rows[0].Has(" Booking_ID "))
}

func TestNormalize_DerivesTimestampFromDateAndTime(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		time     string
		want     time.Time
		wantNull bool
	}{
		{
			name: "plain date and time",
			date: "2024-01-05",
			time: "14:30:00",
			want: time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "date with stray time component",
			date: "2024-01-05 00:00:00",
			time: "09:15:00",
			want: time.Date(2024, 1, 5, 9, 15, 0, 0, time.UTC),
		},
		{
			name: "slash date",
			date: "2024/01/05",
			time: "14:30:00",
			want: time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name:     "unparsable date",
			date:     "not a date",
			time:     "14:30:00",
			wantNull: true,
		},
		{
			name:     "empty both",
			date:     "",
			time:     "",
			wantNull: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := dataset.NewTable(dataset.ColDate, dataset.ColTime)
			tbl.Rows = []dataset.Record{
				{dataset.ColDate: tt.date, dataset.ColTime: tt.time},
			}

			out, err := newTestNormalizer().Normalize(tbl)
			require.NoError(t, err)
			require.True(t, out.HasColumn(dataset.ColRideTimestamp))

			ts, ok := out.Rows[0].Time(dataset.ColRideTimestamp)
			if tt.wantNull {
				assert.False(t, ok)
				assert.Nil(t, out.Rows[0][dataset.ColRideTimestamp])
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestNormalize_ParsesExistingTimestampColumn(t *testing.T) {
	tbl := dataset.NewTable(dataset.ColRideTimestamp)
	tbl.Rows = []dataset.Record{
		{dataset.ColRideTimestamp: "2024-01-05 14:30:00"},
		{dataset.ColRideTimestamp: "garbage"},
	}

	out, err := newTestNormalizer().Normalize(tbl)
	require.NoError(t, err)

	ts, ok := out.Rows[0].Time(dataset.ColRideTimestamp)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC), ts)

	assert.Nil(t, out.Rows[1][dataset.ColRideTimestamp])
}

func TestNormalize_SentinelFills(t *testing.T) {
	tbl := dataset.NewTable(dataset.ColPaymentMethod, dataset.ColIncompleteRidesReason)
	tbl.Rows = []dataset.Record{
		{dataset.ColPaymentMethod: "", dataset.ColIncompleteRidesReason: "   "},
		{dataset.ColPaymentMethod: "UPI", dataset.ColIncompleteRidesReason: "Vehicle Breakdown"},
		{},
	}

	out, err := newTestNormalizer().Normalize(tbl)
	require.NoError(t, err)

	// Blank and missing cells get the fixed labels
	assert.Equal(t, "Other", out.Rows[0].String(dataset.ColPaymentMethod))
	assert.Equal(t, "Unknown Reason", out.Rows[0].String(dataset.ColIncompleteRidesReason))
	assert.Equal(t, "Other", out.Rows[2].String(dataset.ColPaymentMethod))
	assert.Equal(t, "Unknown Reason", out.Rows[2].String(dataset.ColIncompleteRidesReason))

	// Present values are untouched
	assert.Equal(t, "UPI", out.Rows[1].String(dataset.ColPaymentMethod))
	assert.Equal(t, "Vehicle Breakdown", out.Rows[1].String(dataset.ColIncompleteRidesReason))
}

func TestNormalize_SentinelSkipsAbsentColumns(t *testing.T) {
	tbl := dataset.NewTable(dataset.ColBookingID)
	tbl.Rows = []dataset.Record{{dataset.ColBookingID: "CNR100"}}

	out, err := newTestNormalizer().Normalize(tbl)
	require.NoError(t, err)

	// No Payment_Method column in the source means no column in the output
	assert.False(t, out.HasColumn(dataset.ColPaymentMethod))
	assert.False(t, out.Rows[0].Has(dataset.ColPaymentMethod))
}

func TestNormalize_BlankTextBecomesNull(t *testing.T) {
	tbl := dataset.NewTable(dataset.ColCanceledByDriver, dataset.ColBookingStatus)
	tbl.Rows = []dataset.Record{
		{dataset.ColCanceledByDriver: "", dataset.ColBookingStatus: "Success"},
		{dataset.ColCanceledByDriver: "Personal Issue", dataset.ColBookingStatus: "  "},
	}

	out, err := newTestNormalizer().Normalize(tbl)
	require.NoError(t, err)

	assert.Nil(t, out.Rows[0][dataset.ColCanceledByDriver])
	assert.Equal(t, "Success", out.Rows[0].String(dataset.ColBookingStatus))
	assert.Equal(t, "Personal Issue", out.Rows[1].String(dataset.ColCanceledByDriver))
	assert.Nil(t, out.Rows[1][dataset.ColBookingStatus])
}

func TestNormalize_NumericCoercion(t *testing.T) {
	tbl := dataset.NewTable(
		dataset.ColRideDistance, dataset.ColBookingValue,
		dataset.ColDriverRatings, dataset.ColCustomerRating,
	)
	tbl.Rows = []dataset.Record{
		{
			dataset.ColRideDistance:   "12.7",
			dataset.ColBookingValue:   "450",
			dataset.ColDriverRatings:  "4.5",
			dataset.ColCustomerRating: "3.8",
		},
		{
			dataset.ColRideDistance:   "n/a",
			dataset.ColBookingValue:   "",
			dataset.ColDriverRatings:  "bad",
			dataset.ColCustomerRating: nil,
		},
	}

	out, err := newTestNormalizer().Normalize(tbl)
	require.NoError(t, err)

	// Valid values: floats truncate to int for the count-like columns
	assert.Equal(t, int64(12), out.Rows[0].Int(dataset.ColRideDistance))
	assert.Equal(t, int64(450), out.Rows[0].Int(dataset.ColBookingValue))
	f, ok := out.Rows[0].Float(dataset.ColDriverRatings)
	require.True(t, ok)
	assert.Equal(t, 4.5, f)

	// Failures: count-like columns zero-fill, ratings null-fill
	assert.Equal(t, int64(0), out.Rows[1].Int(dataset.ColRideDistance))
	assert.Equal(t, int64(0), out.Rows[1].Int(dataset.ColBookingValue))
	assert.Nil(t, out.Rows[1][dataset.ColDriverRatings])
	assert.Nil(t, out.Rows[1][dataset.ColCustomerRating])
}

func TestNormalize_Idempotent(t *testing.T) {
	tbl := dataset.NewTable(
		dataset.ColBookingID, dataset.ColDate, dataset.ColTime,
		dataset.ColPaymentMethod, dataset.ColIncompleteRidesReason,
		dataset.ColRideDistance, dataset.ColDriverRatings,
	)
	tbl.Rows = []dataset.Record{
		{
			dataset.ColBookingID:     "CNR100",
			dataset.ColDate:          "2024-01-05",
			dataset.ColTime:          "14:30:00",
			dataset.ColPaymentMethod: "",
			dataset.ColRideDistance:  "12.7",
			dataset.ColDriverRatings: "oops",
		},
	}

	norm := newTestNormalizer()
	once, err := norm.Normalize(tbl)
	require.NoError(t, err)

	// Snapshot after one pass
	wantTS, ok := once.Rows[0].Time(dataset.ColRideTimestamp)
	require.True(t, ok)
	wantPayment := once.Rows[0].String(dataset.ColPaymentMethod)
	wantDistance := once.Rows[0].Int(dataset.ColRideDistance)

	twice, err := norm.Normalize(once)
	require.NoError(t, err)

	gotTS, ok := twice.Rows[0].Time(dataset.ColRideTimestamp)
	require.True(t, ok)
	assert.Equal(t, wantTS, gotTS)
	assert.Equal(t, wantPayment, twice.Rows[0].String(dataset.ColPaymentMethod))
	assert.Equal(t, wantDistance, twice.Rows[0].Int(dataset.ColRideDistance))
	assert.Nil(t, twice.Rows[0][dataset.ColDriverRatings])
}

func TestNormalize_NilTable(t *testing.T) {
	_, err := newTestNormalizer().Normalize(nil)
	assert.Error(t, err)
}
