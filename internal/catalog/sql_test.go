package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specByName(t *testing.T, name string) Spec {
	t.Helper()
	spec, ok := Lookup(name)
	require.True(t, ok, "catalog must contain %s", name)
	return spec
}

func TestSQL_SelectStar(t *testing.T) {
	got := specByName(t, QuerySuccessfulBookings).SQL("ola_rides")
	assert.Equal(t,
		`SELECT * FROM "ola_rides" WHERE LOWER("Booking_Status") = 'success'`,
		got)
}

func TestSQL_GroupAndOrder(t *testing.T) {
	got := specByName(t, QueryAvgDistanceByVehicle).SQL("ola_rides")
	assert.Equal(t,
		`SELECT "Vehicle_Type", ROUND(AVG(CAST("Ride_Distance" AS REAL)), 3) AS "Avg_Ride_Distance"`+
			` FROM "ola_rides" GROUP BY "Vehicle_Type" ORDER BY "Avg_Ride_Distance" DESC`,
		got)
}

func TestSQL_DisjunctiveClause(t *testing.T) {
	got := specByName(t, QueryCustomerCancellations).SQL("ola_rides")
	assert.Equal(t,
		`SELECT COUNT(*) AS "Total_Cancelled_By_Customer" FROM "ola_rides"`+
			` WHERE "Canceled_Rides_by_Customer" IS NOT NULL`+
			` OR LOWER("Booking_Status") = 'canceled by customer'`+
			` OR LOWER("Booking_Status") = 'cancelled by customer'`,
		got)
}

func TestSQL_ConjoinedClausesAreParenthesized(t *testing.T) {
	spec := Spec{
		Name: "x",
		Where: []Clause{
			{
				{Column: "A", Op: OpNotNull},
				{Column: "B", Op: OpNotNull},
			},
			{{Column: "C", Op: OpEqualFold, Values: []string{"Yes"}}},
		},
	}

	got := spec.SQL("tbl")
	assert.Equal(t,
		`SELECT * FROM "tbl" WHERE ("A" IS NOT NULL OR "B" IS NOT NULL) AND LOWER("C") = 'yes'`,
		got)
}

func TestSQL_CountIf(t *testing.T) {
	got := specByName(t, QueryDriverCancellationReasons).SQL("ola_rides")
	assert.Equal(t,
		`SELECT SUM(CASE WHEN LOWER("Canceled_Rides_by_Driver") LIKE '%personal%' THEN 1 ELSE 0 END) AS "Cancelled_By_Driver_Personal_Issues",`+
			` SUM(CASE WHEN (LOWER("Canceled_Rides_by_Driver") LIKE '%car%' OR LOWER("Canceled_Rides_by_Driver") LIKE '%vehicle%' OR LOWER("Canceled_Rides_by_Driver") LIKE '%breakdown%') THEN 1 ELSE 0 END) AS "Cancelled_By_Driver_Car_Issues"`+
			` FROM "ola_rides" WHERE "Canceled_Rides_by_Driver" IS NOT NULL`,
		got)
}

func TestSQL_Limit(t *testing.T) {
	got := specByName(t, QueryTopCustomers).SQL("ola_rides")
	assert.Contains(t, got, ` LIMIT 5`)
	assert.Contains(t, got, `ORDER BY "Total_Rides" DESC, "Total_Booking_Value" DESC`)
}

func TestSQL_DayBucket(t *testing.T) {
	got := specByName(t, ChartRidesPerDay).SQL("ola_rides")
	assert.Equal(t,
		`SELECT date("Ride_Timestamp") AS "Ride_Date", COUNT(*) AS "Rides"`+
			` FROM "ola_rides" WHERE "Ride_Timestamp" IS NOT NULL`+
			` GROUP BY "Ride_Date" ORDER BY "Ride_Date"`,
		got)
}

func TestSQL_LabelFallback(t *testing.T) {
	got := specByName(t, ChartStatusBreakdown).SQL("ola_rides")
	assert.Equal(t,
		`SELECT COALESCE("Booking_Status", 'Unknown') AS "Booking_Status", COUNT(*) AS "Rides"`+
			` FROM "ola_rides" GROUP BY "Booking_Status" ORDER BY "Rides" DESC`,
		got)
}

func TestSQL_QuotingIsSafe(t *testing.T) {
	spec := Spec{
		Name: "quoting",
		Where: []Clause{
			{{Column: `Weird"Col`, Op: OpEqualFold, Values: []string{"o'clock"}}},
		},
	}

	got := spec.SQL("tbl")
	assert.Contains(t, got, `"Weird""Col"`)
	assert.Contains(t, got, `'o''clock'`)
}
