package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rideinsights/backend/internal/dataset"
	"github.com/rideinsights/backend/pkg/logger"
)

// Normalizer turns a raw, loosely typed booking table into the canonical
// dataset: unified Ride_Timestamp, sentinel-filled categoricals, coerced
// numeric columns. Every step operates only on rows it can improve, so
// normalizing an already-canonical table changes nothing.
type Normalizer struct {
	logger *logger.Logger
}

// New creates a new Normalizer
func New(log *logger.Logger) *Normalizer {
	return &Normalizer{logger: log}
}

// Date formats accepted for the Date column and for pre-combined timestamps.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
}

var timestampLayouts = []string{
	dataset.TimestampLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Text columns whose blank cells become nulls. Payment_Method and
// Incomplete_Rides_Reason are in the list too; the sentinel fill runs
// afterwards and turns their nulls into labels.
var textColumns = []string{
	dataset.ColBookingID,
	dataset.ColVehicleType,
	dataset.ColBookingStatus,
	dataset.ColCustomerID,
	dataset.ColPaymentMethod,
	dataset.ColIncompleteRides,
	dataset.ColIncompleteRidesReason,
	dataset.ColCanceledByCustomer,
	dataset.ColCanceledByDriver,
}

// Normalize runs the cleaning pipeline on t in place and returns it.
// Per-field parse failures are absorbed via substitution rules (zero, null,
// sentinel label) and never abort the pass; only a nil input is an error.
func (n *Normalizer) Normalize(t *dataset.Table) (*dataset.Table, error) {
	if t == nil {
		return nil, fmt.Errorf("normalize: nil table")
	}

	n.trimColumnNames(t)
	badTimestamps := n.deriveTimestamp(t)
	n.blankToNull(t)
	n.fillSentinels(t)
	badNumbers := n.coerceNumbers(t)

	if badTimestamps > 0 {
		n.logger.WithField("rows", badTimestamps).Warn("Rows with unparsable timestamps set to null")
	}
	if badNumbers > 0 {
		n.logger.WithField("fields", badNumbers).Warn("Numeric fields substituted after parse failure")
	}

	n.logger.WithFields(map[string]interface{}{
		"rows":    t.NumRows(),
		"columns": len(t.Columns),
	}).Info("Dataset normalized")

	return t, nil
}

// trimColumnNames strips whitespace from every column header.
func (n *Normalizer) trimColumnNames(t *dataset.Table) {
	renames := map[string]string{}
	for i, c := range t.Columns {
		trimmed := strings.TrimSpace(c)
		if trimmed != c {
			renames[c] = trimmed
			t.Columns[i] = trimmed
		}
	}
	if len(renames) == 0 {
		return
	}
	for _, row := range t.Rows {
		for old, clean := range renames {
			if v, ok := row[old]; ok {
				delete(row, old)
				row[clean] = v
			}
		}
	}
}

// deriveTimestamp builds Ride_Timestamp from Date+Time when both columns
// exist, otherwise parses a pre-existing Ride_Timestamp column. Any failure
// yields a null timestamp for that row, never an aborted pass. Returns the
// number of rows left null by a failed parse.
func (n *Normalizer) deriveTimestamp(t *dataset.Table) int {
	failed := 0

	switch {
	case t.HasColumn(dataset.ColDate) && t.HasColumn(dataset.ColTime):
		t.AddColumn(dataset.ColRideTimestamp)
		for _, row := range t.Rows {
			ts, ok := combineDateTime(row[dataset.ColDate], row[dataset.ColTime])
			if !ok {
				row[dataset.ColRideTimestamp] = nil
				failed++
				continue
			}
			row[dataset.ColRideTimestamp] = ts
		}

	case t.HasColumn(dataset.ColRideTimestamp):
		for _, row := range t.Rows {
			ts, ok := parseTimestamp(row[dataset.ColRideTimestamp])
			if !ok {
				row[dataset.ColRideTimestamp] = nil
				failed++
				continue
			}
			row[dataset.ColRideTimestamp] = ts
		}
	}

	return failed
}

// combineDateTime reconstructs a timestamp from separate date and time cells.
func combineDateTime(dateVal, timeVal any) (time.Time, bool) {
	date, ok := parseDate(dateVal)
	if !ok {
		return time.Time{}, false
	}

	timeText := strings.TrimSpace(asText(timeVal))
	combined := date.Format("2006-01-02") + " " + timeText
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, combined); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseDate(v any) (time.Time, bool) {
	if ts, ok := v.(time.Time); ok {
		return ts, true
	}
	s := strings.TrimSpace(asText(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseTimestamp(v any) (time.Time, bool) {
	if ts, ok := v.(time.Time); ok {
		return ts, true
	}
	s := strings.TrimSpace(asText(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func asText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// blankToNull converts blank text cells of recognized columns into nulls,
// so presence checks and IS NOT NULL conditions see a missing value rather
// than an empty string.
func (n *Normalizer) blankToNull(t *dataset.Table) {
	for _, col := range textColumns {
		if !t.HasColumn(col) {
			continue
		}
		trimValues := col == dataset.ColPaymentMethod || col == dataset.ColIncompleteRidesReason
		for _, row := range t.Rows {
			s, isString := row[col].(string)
			if !isString {
				continue
			}
			trimmed := strings.TrimSpace(s)
			if trimmed == "" {
				row[col] = nil
			} else if trimValues && trimmed != s {
				row[col] = trimmed
			}
		}
	}
}

// fillSentinels replaces null Payment_Method and Incomplete_Rides_Reason
// values with their fixed labels. Runs after blankToNull so that missing
// and blank cells are treated identically; the labels themselves survive a
// re-run untouched.
func (n *Normalizer) fillSentinels(t *dataset.Table) {
	fills := map[string]string{
		dataset.ColPaymentMethod:         dataset.SentinelPaymentMethod,
		dataset.ColIncompleteRidesReason: dataset.SentinelReason,
	}
	for col, label := range fills {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			if !row.Has(col) {
				row[col] = label
			}
		}
	}
}

// coerceNumbers applies the numeric coercion rules. Ride_Distance and
// Booking_Value become integers with zero substituted on failure; the two
// rating columns become floats with null substituted on failure. Zero is a
// valid "no distance" but would be a misleading rating, hence the asymmetry.
// Returns the number of substituted fields.
func (n *Normalizer) coerceNumbers(t *dataset.Table) int {
	failed := 0

	for _, col := range []string{dataset.ColRideDistance, dataset.ColBookingValue} {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			v, ok := toInt(row[col])
			if !ok {
				failed++
			}
			row[col] = v
		}
	}

	for _, col := range []string{dataset.ColDriverRatings, dataset.ColCustomerRating} {
		if !t.HasColumn(col) {
			continue
		}
		for _, row := range t.Rows {
			f, ok := toFloat(row[col])
			if !ok {
				if row[col] != nil {
					failed++
				}
				row[col] = nil
				continue
			}
			row[col] = f
		}
	}

	return failed
}

// toInt coerces v to int64, truncating floats. ok is false when the zero
// result came from a substitution rather than the data.
func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case float64:
		return int64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case nil:
		return 0, true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
