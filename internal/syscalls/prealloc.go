package syscalls

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
)

const (
	// DefaultInitialCapacity replaces a non-positive capacity hint.
	DefaultInitialCapacity = 256

	// DefaultMaxAttempts bounds the number of calls a single [Query] makes.
	DefaultMaxAttempts = 16

	// DefaultMaxCapacity bounds the size of a single [Query] buffer.
	DefaultMaxCapacity = 64 << 20

	// DefaultMargin is added to probed sizes of families that can only signal
	// truncation through an exact fit.
	DefaultMargin = 64
)

// Strategy selects how [Query] discovers the buffer size a call needs.
type Strategy int

const (
	// GuessAndGrow starts from a capacity hint and doubles until the call
	// completes without (possible) truncation.
	GuessAndGrow Strategy = iota

	// ProbeThenFill asks the call for the required size with an empty buffer
	// first, then fills a buffer of that size.
	ProbeThenFill
)

func (s Strategy) String() string {
	switch s {
	case GuessAndGrow:
		return "guess-and-grow"
	case ProbeThenFill:
		return "probe-then-fill"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// FitPolicy decides what a used length equal to the capacity means.
type FitPolicy int

const (
	// ExactFitTruncates treats a completely filled buffer as possibly
	// truncated. Families that silently cut their output need this.
	ExactFitTruncates FitPolicy = iota

	// ExactFitComplete trusts a completely filled buffer. Families that
	// report truncation with an explicit error code (ERANGE) can use this.
	ExactFitComplete
)

// Mode is handed to the call of every attempt. A probe carries no buffer and
// asks for the required size; a fill carries the buffer to write into.
type Mode struct {
	buf []byte
}

// Probe returns a probing [Mode].
func Probe() Mode {
	return Mode{}
}

// Fill returns a filling [Mode] writing into buf.
func Fill(buf []byte) Mode {
	return Mode{buf: buf}
}

// IsProbe reports whether the call should only report the required size.
func (m Mode) IsProbe() bool {
	return m.buf == nil
}

// Buffer returns the buffer to fill (nil when probing).
func (m Mode) Buffer() []byte {
	return m.buf
}

// QueryCall performs exactly one OS call for the given [Mode]. It reports the
// bytes used (or, when probing, the bytes required). Reporting more than the
// buffer holds means "this many bytes are needed".
type QueryCall func(Mode) Result[int]

// Options configure a single [Query]. The zero value is a guess-and-grow
// query with conservative exact-fit handling and default bounds.
type Options struct {
	Strategy        Strategy
	InitialCapacity int
	// Margin is added to probed sizes. Probe-then-fill with
	// [ExactFitTruncates] and no margin gets [DefaultMargin].
	Margin      int
	MaxAttempts int
	MaxCapacity int
	Fit         FitPolicy
	// TooSmall recognizes the error code a family uses to say the buffer was
	// too small. Such failures trigger growth instead of being returned.
	TooSmall func(Errno) bool
}

// normalize substitutes documented defaults for unset fields.
func (o Options) normalize() Options {
	if o.InitialCapacity <= 0 {
		o.InitialCapacity = DefaultInitialCapacity
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.MaxCapacity <= 0 {
		o.MaxCapacity = DefaultMaxCapacity
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	if o.Strategy == ProbeThenFill && o.Fit == ExactFitTruncates && o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.TooSmall == nil {
		o.TooSmall = func(Errno) bool { return false }
	}

	return o
}

// Query runs call until it produces a complete result, growing the buffer as
// needed. On success it returns an owned copy trimmed to the used length; an
// empty result is a non-nil empty slice. Buffers never exceed MaxCapacity: a
// result that does not fit a buffer of exactly MaxCapacity, or running out of
// attempts, fails with a [*GrowthError] wrapping [ErrGrowthExhausted].
//
// Query keeps no state between invocations and is safe for concurrent use
// with independent calls. OS state may change between attempts; this is
// tolerated by retrying, not prevented.
func Query(opts Options, call QueryCall) Result[[]byte] {
	opts = opts.normalize()

	if opts.Strategy == ProbeThenFill {
		return probeThenFill(opts, call)
	}

	return guessAndGrow(opts, call)
}

func guessAndGrow(opts Options, call QueryCall) Result[[]byte] {
	capacity := min(opts.InitialCapacity, opts.MaxCapacity)
	required := 0

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		buf := make([]byte, capacity)

		var ok bool

		used, err := call(Fill(buf)).Get()
		if err != nil {
			if !opts.TooSmall(CodeOf(err)) {
				return Failure[[]byte](err)
			}
			slog.Debug("Buffer too small: growing.", "strategy", opts.Strategy, "attempt", attempt, "capacity", capacity, "err", err)
			capacity, ok = opts.next(capacity, 0)
		} else {
			switch {
			case used < 0:
				return Failure[[]byte](fmt.Errorf("%w: %d", ErrInvalidLength, used))

			case used > capacity:
				required = used
				slog.Debug("Buffer too small: growing to reported size.", "strategy", opts.Strategy, "attempt", attempt, "capacity", capacity, "required", used)
				capacity, ok = opts.next(capacity, used)

			case used == capacity && opts.Fit == ExactFitTruncates:
				slog.Debug("Buffer possibly truncated: growing.", "strategy", opts.Strategy, "attempt", attempt, "capacity", capacity)
				capacity, ok = opts.next(capacity, 0)

			default:
				return Success(trim(buf, used))
			}
		}

		if !ok {
			return Failure[[]byte](&GrowthError{Attempts: attempt, Capacity: capacity, Required: required})
		}
	}

	return Failure[[]byte](&GrowthError{Attempts: opts.MaxAttempts, Capacity: capacity, Required: required})
}

func probeThenFill(opts Options, call QueryCall) Result[[]byte] {
	reported := 0
	capacity := 0

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		size, err := call(Probe()).Get()
		if err != nil {
			return Failure[[]byte](err)
		}
		if size < 0 {
			return Failure[[]byte](fmt.Errorf("%w: %d", ErrInvalidLength, size))
		}
		if size == 0 && reported == 0 {
			return Success([]byte{})
		}

		need := max(size, reported)
		if need > opts.MaxCapacity {
			return Failure[[]byte](&GrowthError{Attempts: attempt - 1, Capacity: capacity, Required: need})
		}

		next := need + opts.Margin
		if next <= capacity {
			// The previous fill was too small for what the probe reports now.
			if capacity >= opts.MaxCapacity {
				return Failure[[]byte](&GrowthError{Attempts: attempt - 1, Capacity: capacity, Required: need})
			}
			next = grow(capacity, 0)
		}
		capacity = min(next, opts.MaxCapacity)

		buf := make([]byte, capacity)

		used, err := call(Fill(buf)).Get()
		if err != nil {
			if !opts.TooSmall(CodeOf(err)) {
				return Failure[[]byte](err)
			}
			slog.Debug("Required size changed since probe: retrying.", "strategy", opts.Strategy, "attempt", attempt, "capacity", capacity, "err", err)

			continue
		}

		switch {
		case used < 0:
			return Failure[[]byte](fmt.Errorf("%w: %d", ErrInvalidLength, used))

		case used > capacity:
			reported = used
			slog.Debug("Fill reported larger size than probed: retrying.", "strategy", opts.Strategy, "attempt", attempt, "capacity", capacity, "required", used)

			continue

		case used == capacity && opts.Fit == ExactFitTruncates:
			slog.Debug("Buffer possibly truncated: retrying.", "strategy", opts.Strategy, "attempt", attempt, "capacity", capacity)

			continue
		}

		return Success(trim(buf, used))
	}

	return Failure[[]byte](&GrowthError{Attempts: opts.MaxAttempts, Capacity: capacity, Required: reported})
}

// next returns the capacity to try after capacity, bounded by MaxCapacity.
// It reports false once a buffer of MaxCapacity has been tried or required
// is known to exceed it.
func (o Options) next(capacity int, required int) (int, bool) {
	if capacity >= o.MaxCapacity || required > o.MaxCapacity {
		return capacity, false
	}

	return min(grow(capacity, required), o.MaxCapacity), true
}

// grow returns the next capacity: at least double, at least required, and
// always strictly larger than capacity.
func grow(capacity int, required int) int {
	next := capacity * 2
	if capacity > math.MaxInt/2 {
		next = math.MaxInt
	}

	return max(next, required, capacity+1)
}

// trim copies the used part of buf into an exactly sized slice, releasing
// the excess capacity of buf.
func trim(buf []byte, used int) []byte {
	out := make([]byte, used)
	copy(out, buf[:used])

	return out
}

// QueryUint32s runs [Query] and decodes the result as native-endian 32-bit
// elements. A used length that is not a whole number of elements fails with
// [ErrInvalidLength].
func QueryUint32s(opts Options, call QueryCall) Result[[]uint32] {
	const size = 4

	data, err := Query(opts, call).Get()
	if err != nil {
		return Failure[[]uint32](err)
	}
	if len(data)%size != 0 {
		return Failure[[]uint32](fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidLength, len(data), size))
	}

	out := make([]uint32, 0, len(data)/size)
	for i := 0; i < len(data); i += size {
		out = append(out, binary.NativeEndian.Uint32(data[i:i+size]))
	}

	return Success(out)
}
