package dataset

import "time"

// Recognized column names of the ride booking dataset. Source files may
// carry any subset of these; every consumer checks presence before use.
const (
	ColBookingID             = "Booking_ID"
	ColDate                  = "Date"
	ColTime                  = "Time"
	ColRideTimestamp         = "Ride_Timestamp"
	ColVehicleType           = "Vehicle_Type"
	ColBookingStatus         = "Booking_Status"
	ColCustomerID            = "Customer_ID"
	ColPaymentMethod         = "Payment_Method"
	ColIncompleteRides       = "Incomplete_Rides"
	ColIncompleteRidesReason = "Incomplete_Rides_Reason"
	ColRideDistance          = "Ride_Distance"
	ColBookingValue          = "Booking_Value"
	ColDriverRatings         = "Driver_Ratings"
	ColCustomerRating        = "Customer_Rating"
	ColCanceledByCustomer    = "Canceled_Rides_by_Customer"
	ColCanceledByDriver      = "Canceled_Rides_by_Driver"
)

// Sentinel labels substituted for missing categorical data.
const (
	SentinelPaymentMethod = "Other"
	SentinelReason        = "Unknown Reason"
	SentinelStatus        = "Unknown"
)

// TimestampLayout is the canonical serialization of Ride_Timestamp in the
// CSV cache and the backing store. Lexicographic order equals time order.
const TimestampLayout = "2006-01-02 15:04:05"

// Record is one row of a tabular dataset: a sparse mapping from column name
// to value. Values are string, int64, float64, time.Time, or nil. A missing
// key and a nil value are equivalent.
type Record map[string]any

// Has reports whether the record carries a non-nil value for col.
func (r Record) Has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}

// String returns the value of col as text, or "" if absent or not text.
func (r Record) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// Int returns the value of col as int64, or 0 if absent or not integral.
func (r Record) Int(col string) int64 {
	n, _ := r[col].(int64)
	return n
}

// Float returns the value of col and whether it is a float64.
func (r Record) Float(col string) (float64, bool) {
	f, ok := r[col].(float64)
	return f, ok
}

// Time returns the value of col and whether it is a timestamp.
func (r Record) Time(col string) (time.Time, bool) {
	t, ok := r[col].(time.Time)
	return t, ok
}

// Table is an ordered set of columns plus the records holding their values.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// NumRows returns the number of records in the table.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// AddColumn appends a column to the table's column order if not present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}
