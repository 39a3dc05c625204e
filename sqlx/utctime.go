package sqlx

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ColumnKind tags the two physical representations a timestamp column can
// have while a naive -> offset-aware schema migration is rolling out. The tag
// comes from column metadata, never from inspecting the value.
type ColumnKind int

const (
	// ColumnNaive stores wall-clock fields with no offset recorded.
	ColumnNaive ColumnKind = iota
	// ColumnOffset stores wall-clock fields together with a zone offset.
	ColumnOffset
)

// StoredTimestamp is the on-disk form of a timestamp: a wall-clock value plus
// the kind of column it came from. For ColumnNaive values the location on
// Value is meaningless; only the wall-clock fields count.
type StoredTimestamp struct {
	Kind  ColumnKind
	Value time.Time
}

// UTCTime is a point in time that is always UTC-normalized, with offset
// +00:00. Application code never sees any other offset: decoding fails loudly
// rather than hand back a shifted value.
type UTCTime time.Time

func NewUTCTime(t time.Time) UTCTime {
	return UTCTime(t.UTC())
}

func (t UTCTime) Time() time.Time {
	return time.Time(t).UTC()
}

func (t UTCTime) Equal(other UTCTime) bool {
	return time.Time(t).Equal(time.Time(other))
}

func (t UTCTime) String() string {
	return t.Time().Format(time.RFC3339Nano)
}

// OffsetViolationError means an offset-aware column handed back a non-UTC
// offset. That can only happen when the database session is not running in
// UTC, which silently corrupts every naive-typed column in the same database,
// so the read is rejected outright. The message carries the shifted local
// value for operator diagnosis.
type OffsetViolationError struct {
	Value time.Time
}

func (e OffsetViolationError) Error() string {
	return fmt.Sprintf(
		"timestamp read from database carries a non-UTC offset: %s; the database session must be pinned to UTC",
		e.Value.Format(time.RFC3339Nano),
	)
}

// EncodeTimestamp prepares a UTC instant for storage in a column of the given
// kind. Values are always sent as if the destination clock is UTC: naive
// columns receive the UTC wall-clock fields with the offset stripped,
// offset-aware columns receive an explicit +00:00.
func EncodeTimestamp(t UTCTime, kind ColumnKind) StoredTimestamp {
	return StoredTimestamp{
		Kind:  kind,
		Value: time.Time(t).UTC(),
	}
}

// DecodeTimestamp interprets a stored value as a UTC instant.
//
// Naive values are taken to already be UTC wall clock. That assumption holds
// only because Connect pins every session to UTC; the codec itself cannot
// verify it, and a mis-zoned session produces an hour-shifted result here
// with no error.
//
// Offset-aware values are accepted only when the recorded offset is zero. A
// non-zero offset is proof the session precondition is violated and fails
// with OffsetViolationError instead of converting.
func DecodeTimestamp(st StoredTimestamp) (UTCTime, error) {
	switch st.Kind {
	case ColumnNaive:
		v := st.Value
		return UTCTime(time.Date(
			v.Year(), v.Month(), v.Day(),
			v.Hour(), v.Minute(), v.Second(), v.Nanosecond(),
			time.UTC,
		)), nil
	case ColumnOffset:
		if _, offset := st.Value.Zone(); offset != 0 {
			return UTCTime{}, OffsetViolationError{Value: st.Value}
		}
		return UTCTime(st.Value.UTC()), nil
	default:
		return UTCTime{}, ErrUnknownColumnKind
	}
}

// Value implements driver.Valuer.
func (t UTCTime) Value() (driver.Value, error) {
	return time.Time(t).UTC(), nil
}

// Scan implements sql.Scanner. Drivers report timestamps either as time.Time
// (offset taken as-is) or as raw text (offset present only for offset-aware
// columns); both routes go through DecodeTimestamp.
func (t *UTCTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = UTCTime{}
		return nil
	case time.Time:
		if _, offset := v.Zone(); offset != 0 {
			return OffsetViolationError{Value: v}
		}
		*t = UTCTime(v.UTC())
		return nil
	case []byte:
		return t.scanText(string(v))
	case string:
		return t.scanText(v)
	default:
		return fmt.Errorf("cannot scan %T into UTCTime", src)
	}
}

var storedTimestampLayouts = []struct {
	layout string
	kind   ColumnKind
}{
	{"2006-01-02 15:04:05.999999999Z07:00", ColumnOffset},
	{"2006-01-02T15:04:05.999999999Z07:00", ColumnOffset},
	{"2006-01-02 15:04:05.999999999", ColumnNaive},
	{"2006-01-02", ColumnNaive},
}

func (t *UTCTime) scanText(s string) error {
	for _, candidate := range storedTimestampLayouts {
		parsed, err := time.ParseInLocation(candidate.layout, s, time.UTC)
		if err != nil {
			continue
		}

		decoded, err := DecodeTimestamp(StoredTimestamp{Kind: candidate.kind, Value: parsed})
		if err != nil {
			return err
		}
		*t = decoded
		return nil
	}

	return fmt.Errorf("cannot parse %q as a timestamp", s)
}
