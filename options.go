package opinf

import (
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/opinf/internal/chart"
	"github.com/yyyoichi/opinf/internal/check"
	"github.com/yyyoichi/opinf/internal/svd"
)

// Mode selects the strategy used to compute a truncated SVD.
type Mode int

const (
	// Simple computes the full thin SVD and truncates it.
	Simple Mode = iota
	// Arpack computes only the leading triplets with an iterative Krylov solver.
	Arpack
	// Randomized computes an approximate SVD by random projection.
	Randomized
)

func (m Mode) String() string {
	switch m {
	case Simple:
		return "simple"
	case Arpack:
		return "arpack"
	case Randomized:
		return "randomized"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "simple", "arpack" or "randomized" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "simple":
		return Simple, nil
	case "arpack":
		return Arpack, nil
	case "randomized":
		return Randomized, nil
	}
	return 0, check.Invalid("invalid mode '%s'", s)
}

// PlotFormat selects the encoding of diagnostic charts.
type PlotFormat = chart.Format

const (
	PlotHTML = chart.HTML
	PlotPNG  = chart.PNG
	PlotSVG  = chart.SVG
)

type Option func(*config) error

type config struct {
	mode        Mode
	seed        uint64
	oversamples int
	powerIters  int
	maxIter     int
	tol         float64
	rmax        int
	plot        io.Writer
	plotFormat  PlotFormat
	logger      zerolog.Logger
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		mode:        Simple,
		oversamples: -1,
		powerIters:  -1,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *config) solver() (svd.Solver, error) {
	switch c.mode {
	case Simple:
		return svd.Simple{}, nil
	case Arpack:
		return svd.Lanczos{Seed: c.seed, MaxIter: c.maxIter, Tol: c.tol, Logger: c.logger}, nil
	case Randomized:
		return svd.Randomized{Oversamples: c.oversamples, PowerIters: c.powerIters, Seed: c.seed}, nil
	}
	return nil, check.Invalid("invalid mode '%s'", c.mode)
}

// WithMode selects the SVD strategy used for basis computation. Default Simple.
func WithMode(m Mode) Option {
	return func(c *config) error {
		c.mode = m
		return nil
	}
}

// WithSeed seeds the random start vector (Arpack) or the random test
// matrix (Randomized). Results are deterministic for a given seed.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		return nil
	}
}

// WithOversamples sets the number of extra random directions used by
// Randomized. Default 10.
func WithOversamples(p int) Option {
	return func(c *config) error {
		if p < 0 {
			return check.Invalid("oversamples must be nonnegative, got %d", p)
		}
		c.oversamples = p
		return nil
	}
}

// WithPowerIterations sets the number of power iterations used by
// Randomized. By default 7 are used when r < 0.1*min(n,k) and 4 otherwise.
func WithPowerIterations(q int) Option {
	return func(c *config) error {
		if q < 0 {
			return check.Invalid("power iterations must be nonnegative, got %d", q)
		}
		c.powerIters = q
		return nil
	}
}

// WithMaxIterations caps the Krylov dimension reached by Arpack.
func WithMaxIterations(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return check.Invalid("max iterations must be positive, got %d", n)
		}
		c.maxIter = n
		return nil
	}
}

// WithTolerance sets the relative residual tolerance of Arpack.
func WithTolerance(tol float64) Option {
	return func(c *config) error {
		if tol <= 0 || math.IsNaN(tol) {
			return check.Invalid("tolerance must be positive, got %g", tol)
		}
		c.tol = tol
		return nil
	}
}

// WithRMax bounds the basis rank examined by MinimalProjectionError.
func WithRMax(rmax int) Option {
	return func(c *config) error {
		if rmax < 1 {
			return check.Invalid("rmax must be positive, got %d", rmax)
		}
		c.rmax = rmax
		return nil
	}
}

// WithPlot renders a diagnostic chart of the rank selection to w.
// The chart never affects returned values; render failures are logged.
func WithPlot(w io.Writer, format PlotFormat) Option {
	return func(c *config) error {
		if w == nil {
			return check.Invalid("plot writer is nil")
		}
		c.plot = w
		c.plotFormat = format
		return nil
	}
}

// WithLogger sets the logger for debug events. Default is a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}
