package catalog

import "github.com/rideinsights/backend/internal/dataset"

// Names of the ten analytical queries.
const (
	QuerySuccessfulBookings        = "successful_bookings"
	QueryAvgDistanceByVehicle      = "avg_distance_by_vehicle"
	QueryCustomerCancellations     = "customer_cancellations"
	QueryTopCustomers              = "top_customers"
	QueryDriverCancellationReasons = "driver_cancellation_reasons"
	QueryPrimeSedanRatings         = "prime_sedan_ratings"
	QueryUPIPayments               = "upi_payments"
	QueryAvgCustomerRating         = "avg_customer_rating_by_vehicle"
	QuerySuccessfulRideRevenue     = "successful_ride_revenue"
	QueryIncompleteRides           = "incomplete_rides"
)

// Names of the derived chart series, exposed the same way as queries.
const (
	ChartRidesPerDay     = "rides_per_day"
	ChartStatusBreakdown = "status_breakdown"
)

// queries is the fixed analytical catalog, in presentation order.
var queries = []Spec{
	{
		Name:  QuerySuccessfulBookings,
		Title: "All successful bookings",
		Where: []Clause{
			{{Column: dataset.ColBookingStatus, Op: OpEqualFold, Values: []string{"success"}}},
		},
	},
	{
		Name:  QueryAvgDistanceByVehicle,
		Title: "Average ride distance per vehicle type",
		Select: []Column{
			{Name: dataset.ColVehicleType},
			{Name: dataset.ColRideDistance, Agg: AggAvg, Round: 3, Alias: "Avg_Ride_Distance"},
		},
		GroupBy: []string{dataset.ColVehicleType},
		OrderBy: []Order{{Column: "Avg_Ride_Distance", Desc: true}},
	},
	{
		Name:  QueryCustomerCancellations,
		Title: "Total rides cancelled by customers",
		Select: []Column{
			{Agg: AggCountAll, Alias: "Total_Cancelled_By_Customer"},
		},
		// Marker presence OR either status spelling. The original counts
		// both spellings here while other status checks match one literal;
		// kept as found.
		Where: []Clause{{
			{Column: dataset.ColCanceledByCustomer, Op: OpNotNull},
			{Column: dataset.ColBookingStatus, Op: OpEqualFold, Values: []string{"canceled by customer"}},
			{Column: dataset.ColBookingStatus, Op: OpEqualFold, Values: []string{"cancelled by customer"}},
		}},
	},
	{
		Name:  QueryTopCustomers,
		Title: "Top 5 customers by number of rides",
		Select: []Column{
			{Name: dataset.ColCustomerID},
			{Agg: AggCountAll, Alias: "Total_Rides"},
			{Name: dataset.ColBookingValue, Agg: AggSum, Alias: "Total_Booking_Value"},
		},
		GroupBy: []string{dataset.ColCustomerID},
		OrderBy: []Order{
			{Column: "Total_Rides", Desc: true},
			{Column: "Total_Booking_Value", Desc: true},
		},
		Limit: 5,
	},
	{
		Name:  QueryDriverCancellationReasons,
		Title: "Driver cancellations: personal and vehicle issues",
		// The two counters are non-exclusive: a reason mentioning both a
		// personal matter and a breakdown counts toward each.
		Select: []Column{
			{
				Agg:   AggCountIf,
				Alias: "Cancelled_By_Driver_Personal_Issues",
				If: Clause{{
					Column: dataset.ColCanceledByDriver,
					Op:     OpContainsAny,
					Values: []string{"personal"},
				}},
			},
			{
				Agg:   AggCountIf,
				Alias: "Cancelled_By_Driver_Car_Issues",
				If: Clause{{
					Column: dataset.ColCanceledByDriver,
					Op:     OpContainsAny,
					Values: []string{"car", "vehicle", "breakdown"},
				}},
			},
		},
		Where: []Clause{
			{{Column: dataset.ColCanceledByDriver, Op: OpNotNull}},
		},
	},
	{
		Name:  QueryPrimeSedanRatings,
		Title: "Max and min driver rating for Prime Sedan",
		Select: []Column{
			{Name: dataset.ColDriverRatings, Agg: AggMax, Alias: "Max_Driver_Rating"},
			{Name: dataset.ColDriverRatings, Agg: AggMin, Alias: "Min_Driver_Rating"},
			{Agg: AggCountAll, Alias: "Total_Prime_Sedan_Rides_With_Rating"},
		},
		Where: []Clause{
			{{Column: dataset.ColVehicleType, Op: OpEqualFold, Values: []string{"prime sedan"}}},
			{{Column: dataset.ColDriverRatings, Op: OpNotNull}},
		},
	},
	{
		Name:  QueryUPIPayments,
		Title: "Rides paid via UPI",
		Where: []Clause{
			{{Column: dataset.ColPaymentMethod, Op: OpEqualFold, Values: []string{"upi"}}},
		},
	},
	{
		Name:  QueryAvgCustomerRating,
		Title: "Average customer rating per vehicle type",
		Select: []Column{
			{Name: dataset.ColVehicleType},
			{Name: dataset.ColCustomerRating, Agg: AggAvg, Round: 3, Alias: "Avg_Customer_Rating"},
			{Name: dataset.ColCustomerRating, Agg: AggCountCol, Alias: "Rating_Count"},
		},
		Where: []Clause{
			{{Column: dataset.ColCustomerRating, Op: OpNotNull}},
		},
		GroupBy: []string{dataset.ColVehicleType},
		OrderBy: []Order{{Column: "Avg_Customer_Rating", Desc: true}},
	},
	{
		Name:  QuerySuccessfulRideRevenue,
		Title: "Total booking value of successful rides",
		Select: []Column{
			{Name: dataset.ColBookingValue, Agg: AggSum, Alias: "Total_Revenue_Successful_Rides"},
			{Agg: AggCountAll, Alias: "Total_Successful_Rides"},
			{Name: dataset.ColBookingValue, Agg: AggAvg, Round: 2, Alias: "Avg_Booking_Value"},
		},
		Where: []Clause{
			{{Column: dataset.ColBookingStatus, Op: OpEqualFold, Values: []string{"success"}}},
		},
	},
	{
		Name:  QueryIncompleteRides,
		Title: "All incomplete rides with reason",
		Select: []Column{
			{Name: dataset.ColBookingID},
			{Name: dataset.ColRideTimestamp},
			{Name: dataset.ColBookingStatus},
			{Name: dataset.ColIncompleteRides},
			{Name: dataset.ColIncompleteRidesReason},
		},
		Where: []Clause{{
			{Column: dataset.ColIncompleteRides, Op: OpEqualFold, Values: []string{"yes"}},
			{Column: dataset.ColIncompleteRidesReason, Op: OpNotNull},
		}},
		OrderBy: []Order{{Column: dataset.ColRideTimestamp}},
	},
}

// charts are the derived presentation series, computed over the same table.
var charts = []Spec{
	{
		Name:  ChartRidesPerDay,
		Title: "Ride volume over time",
		Select: []Column{
			{Name: dataset.ColRideTimestamp, Agg: AggDay, Alias: "Ride_Date"},
			{Agg: AggCountAll, Alias: "Rides"},
		},
		Where: []Clause{
			{{Column: dataset.ColRideTimestamp, Op: OpNotNull}},
		},
		GroupBy: []string{"Ride_Date"},
		OrderBy: []Order{{Column: "Ride_Date"}},
	},
	{
		Name:  ChartStatusBreakdown,
		Title: "Booking status breakdown",
		Select: []Column{
			{Name: dataset.ColBookingStatus, Agg: AggLabel, Fallback: dataset.SentinelStatus, Alias: "Booking_Status"},
			{Agg: AggCountAll, Alias: "Rides"},
		},
		GroupBy: []string{"Booking_Status"},
		OrderBy: []Order{{Column: "Rides", Desc: true}},
	},
}

// Queries returns the ten analytical queries in presentation order.
func Queries() []Spec {
	return queries
}

// Charts returns the derived chart series.
func Charts() []Spec {
	return charts
}

// All returns every runnable spec: queries first, then charts.
func All() []Spec {
	all := make([]Spec, 0, len(queries)+len(charts))
	all = append(all, queries...)
	all = append(all, charts...)
	return all
}

// Lookup resolves a spec by name.
func Lookup(name string) (Spec, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}
