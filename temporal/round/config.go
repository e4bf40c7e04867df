package round

import "fmt"

// Config describes a rounding or difference operation: the smallest unit to
// keep, the largest unit to balance into, the increment of the smallest unit,
// and the rounding mode.
type Config struct {
	Smallest  Unit
	Largest   Unit
	Increment int64
	Mode      Mode

	hasLargest bool
}

// Option configures a Config.
type Option func(*Config)

// WithIncrement rounds to multiples of n of the smallest unit.
func WithIncrement(n int64) Option { return func(c *Config) { c.Increment = n } }

// WithMode sets the rounding mode.
func WithMode(m Mode) Option { return func(c *Config) { c.Mode = m } }

// WithLargest sets the largest unit a result may be balanced into.
func WithLargest(u Unit) Option {
	return func(c *Config) { c.Largest, c.hasLargest = u, true }
}

// WithSmallest sets the smallest unit of a result. It is mostly useful for
// differences, where the smallest unit defaults to the finest precision of
// the values compared.
func WithSmallest(u Unit) Option { return func(c *Config) { c.Smallest = u } }

// New returns a Config for smallest with increment 1 and the default mode
// def, modified by opt.
func New(smallest Unit, def Mode, opt ...Option) Config {
	c := Config{Smallest: smallest, Increment: 1, Mode: def}
	for _, o := range opt {
		o(&c)
	}
	return c
}

// HasLargest returns true if the largest unit was set explicitly.
func (c Config) HasLargest() bool { return c.hasLargest }

// LargestOr returns the explicit largest unit, or the larger of def and the
// smallest unit when none was set.
func (c Config) LargestOr(def Unit) Unit {
	if c.hasLargest {
		return c.Largest
	}
	return max(def, c.Smallest)
}

// Resolve returns c with Largest resolved via LargestOr(def), after checking
// that the smallest unit does not exceed the largest.
func (c Config) Resolve(def Unit) (Config, error) {
	c.Largest = c.LargestOr(def)
	c.hasLargest = true
	if c.Smallest > c.Largest {
		return c, fmt.Errorf(
			"%w: smallest unit %v is larger than largest unit %v",
			ErrInvalid, c.Smallest, c.Largest,
		)
	}
	return c, c.validateMode()
}

// validateMode checks that the mode is one of the defined modes.
func (c Config) validateMode() error {
	if c.Mode > HalfEven {
		return fmt.Errorf("%w: unknown rounding mode %v", ErrInvalid, c.Mode)
	}
	return nil
}

// Nanos returns the length of one increment of the smallest unit in
// nanoseconds, or 0 for months and years.
func (c Config) Nanos() int64 { return c.Smallest.Nanos() * c.Increment }

// ValidateIncrement checks the mode and the increment against the smallest
// unit. The increment must be positive. When bounded is true and the unit
// has a natural modulus, the increment must also divide the modulus evenly
// and be smaller than it.
func (c Config) ValidateIncrement(bounded bool) error {
	if err := c.validateMode(); err != nil {
		return err
	}
	if c.Increment <= 0 {
		return fmt.Errorf("%w: increment must be positive, got %d", ErrInvalid, c.Increment)
	}
	if !bounded {
		return nil
	}
	mod := c.Smallest.Modulus()
	if mod == 0 {
		return nil
	}
	if c.Increment >= mod || mod%c.Increment != 0 {
		return fmt.Errorf(
			"%w: increment %d does not evenly divide %d %vs",
			ErrInvalid, c.Increment, mod, c.Smallest,
		)
	}
	return nil
}

// ValidateDayDivisor checks the mode and that one increment of the smallest
// unit divides a 24-hour day evenly, as required when rounding instants.
func (c Config) ValidateDayDivisor() error {
	if err := c.validateMode(); err != nil {
		return err
	}
	if c.Increment <= 0 {
		return fmt.Errorf("%w: increment must be positive, got %d", ErrInvalid, c.Increment)
	}
	if c.Smallest > Hour {
		return fmt.Errorf("%w: unit %v exceeds hour", ErrInvalid, c.Smallest)
	}
	day := Day.Nanos()
	if n := c.Nanos(); n > day || day%n != 0 {
		return fmt.Errorf(
			"%w: increment %d %vs does not evenly divide one day",
			ErrInvalid, c.Increment, c.Smallest,
		)
	}
	return nil
}
