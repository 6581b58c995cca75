package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rideinsights/backend/internal/dataset"
)

func TestQueries_CatalogShape(t *testing.T) {
	specs := Queries()
	require.Len(t, specs, 10)

	// Names are unique and in presentation order
	seen := map[string]bool{}
	for _, s := range specs {
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.Title)
		assert.False(t, seen[s.Name], "duplicate query name %s", s.Name)
		seen[s.Name] = true
	}

	assert.Equal(t, QuerySuccessfulBookings, specs[0].Name)
	assert.Equal(t, QueryIncompleteRides, specs[9].Name)
}

func TestCharts_ExposedLikeQueries(t *testing.T) {
	specs := Charts()
	require.Len(t, specs, 2)

	for _, s := range specs {
		_, ok := Lookup(s.Name)
		assert.True(t, ok, "chart %s must be resolvable by Lookup", s.Name)
	}
}

func TestLookup(t *testing.T) {
	spec, ok := Lookup(QueryTopCustomers)
	require.True(t, ok)
	assert.Equal(t, 5, spec.Limit)

	_, ok = Lookup("no_such_query")
	assert.False(t, ok)
}

func TestRequiredColumns(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "filter only",
			query: QuerySuccessfulBookings,
			want:  []string{dataset.ColBookingStatus},
		},
		{
			name:  "group and aggregate",
			query: QueryAvgDistanceByVehicle,
			want:  []string{dataset.ColVehicleType, dataset.ColRideDistance},
		},
		{
			name:  "count-if conditions included",
			query: QueryDriverCancellationReasons,
			want:  []string{dataset.ColCanceledByDriver},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, ok := Lookup(tt.query)
			require.True(t, ok)

			got := spec.RequiredColumns()
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestRequiredColumns_SkipsAliases(t *testing.T) {
	spec, ok := Lookup(QueryTopCustomers)
	require.True(t, ok)

	got := spec.RequiredColumns()
	assert.NotContains(t, got, "Total_Rides")
	assert.NotContains(t, got, "Total_Booking_Value")
	assert.Contains(t, got, dataset.ColCustomerID)
	assert.Contains(t, got, dataset.ColBookingValue)
}
