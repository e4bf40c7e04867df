package temporal

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// scan implements sql.Scanner for the types in this package. Strings and
// byte slices are parsed with parse; time.Time values, as returned by
// database drivers for date and time columns, are converted with fromTime
// when it is not nil. NULL leaves dst unchanged.
func scan[T any](dst *T, src any, parse func(string) (T, error), fromTime func(time.Time) (T, error)) error {
	var (
		v   T
		err error
	)
	switch src := src.(type) {
	case nil:
		return nil
	case string:
		v, err = parse(src)
	case []byte:
		v, err = parse(string(src))
	case time.Time:
		if fromTime == nil {
			return fmt.Errorf("%w: cannot convert %T to %T", ErrScan, src, v)
		}
		v, err = fromTime(src)
	default:
		return fmt.Errorf("%w: unable to scan type %T into %T", ErrScan, src, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScan, err)
	}
	*dst = v
	return nil
}

// unmarshal implements encoding.TextUnmarshaler for the types in this
// package.
func unmarshal[T any](dst *T, data []byte, parse func(string) (T, error)) error {
	v, err := parse(string(data))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return d.AppendText(nil), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error { return unmarshal(d, data, ParseDate) }

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error { return scan(d, src, ParseDate, DateFromGoTime) }

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) { return d.String(), nil }

// MarshalText implements encoding.TextMarshaler.
func (t Time) MarshalText() ([]byte, error) { return t.AppendText(nil), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Time) UnmarshalText(data []byte) error { return unmarshal(t, data, ParseTime) }

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	return scan(t, src, ParseTime, func(v time.Time) (Time, error) { return TimeFromGoTime(v), nil })
}

// Value implements driver.Valuer.
func (t Time) Value() (driver.Value, error) { return t.String(), nil }

// MarshalText implements encoding.TextMarshaler.
func (dt DateTime) MarshalText() ([]byte, error) { return dt.AppendText(nil), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (dt *DateTime) UnmarshalText(data []byte) error { return unmarshal(dt, data, ParseDateTime) }

// Scan implements sql.Scanner.
func (dt *DateTime) Scan(src any) error { return scan(dt, src, ParseDateTime, DateTimeFromGoTime) }

// Value implements driver.Valuer.
func (dt DateTime) Value() (driver.Value, error) { return dt.String(), nil }

// MarshalText implements encoding.TextMarshaler.
func (ts Timestamp) MarshalText() ([]byte, error) { return ts.AppendText(nil), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (ts *Timestamp) UnmarshalText(data []byte) error {
	return unmarshal(ts, data, ParseTimestamp)
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	return scan(ts, src, ParseTimestamp, TimestampFromGoTime)
}

// Value implements driver.Valuer. It returns a time.Time so that drivers
// store it in timestamp columns.
func (ts Timestamp) Value() (driver.Value, error) { return ts.GoTime(), nil }

// MarshalText implements encoding.TextMarshaler.
func (z ZonedDateTime) MarshalText() ([]byte, error) { return z.AppendText(nil), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Zones load from
// tz.System.
func (z *ZonedDateTime) UnmarshalText(data []byte) error {
	return unmarshal(z, data, parseZonedSystem)
}

// Scan implements sql.Scanner. Zones load from tz.System.
func (z *ZonedDateTime) Scan(src any) error {
	return scan(z, src, parseZonedSystem, nil)
}

// Value implements driver.Valuer.
func (z ZonedDateTime) Value() (driver.Value, error) { return z.String(), nil }

func parseZonedSystem(src string) (ZonedDateTime, error) { return ParseZoned(src, nil) }

// MarshalText implements encoding.TextMarshaler.
func (s Span) MarshalText() ([]byte, error) { return s.AppendText(nil), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Span) UnmarshalText(data []byte) error { return unmarshal(s, data, ParseSpan) }

// Scan implements sql.Scanner.
func (s *Span) Scan(src any) error { return scan(s, src, ParseSpan, nil) }

// Value implements driver.Valuer.
func (s Span) Value() (driver.Value, error) { return s.String(), nil }

// MarshalText implements encoding.TextMarshaler.
func (d SignedDuration) MarshalText() ([]byte, error) { return d.AppendText(nil), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *SignedDuration) UnmarshalText(data []byte) error {
	return unmarshal(d, data, ParseSignedDuration)
}

// Scan implements sql.Scanner.
func (d *SignedDuration) Scan(src any) error { return scan(d, src, ParseSignedDuration, nil) }

// Value implements driver.Valuer.
func (d SignedDuration) Value() (driver.Value, error) { return d.String(), nil }
