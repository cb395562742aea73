package experiment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hupe1980/corrsketch/datagen"
	"github.com/hupe1980/corrsketch/sketch"
)

// ErrInvalidConfig is returned for a configuration a run cannot start with.
var ErrInvalidConfig = errors.New("experiment: invalid config")

// Config describes one experiment run.
type Config struct {
	// Overlap is the fraction of nonzero entries the two vectors share.
	Overlap float64

	// Outlier is the fraction of shared entries replaced by outliers.
	Outlier float64

	// OutlierMax bounds the outlier distribution. Outliers are drawn from
	// N(OutlierMax/2, OutlierMax/2) using integer halving.
	OutlierMax int

	// T is the number of count-sketch rows.
	T int

	// Corr is the target correlation of the shared values.
	Corr float64

	// StartSize, EndSize and IntervalSize span the storage sizes (inclusive).
	StartSize    int
	EndSize      int
	IntervalSize int

	// Mode selects how storage is split between sketches.
	Mode sketch.Mode

	// Iterations is the number of trials.
	Iterations int

	// BlobName names the checkpoint blob. Required.
	BlobName string

	// Families lists the families to estimate with. Required.
	Families []sketch.Family

	// FamilyTrials limits the number of trials per family. Families without an
	// entry run every trial.
	FamilyTrials map[sketch.Family]int

	// Length and NonZero shape the generated vectors. Zero selects the datagen
	// defaults.
	Length  int
	NonZero int
}

// DefaultConfig returns the defaults of every optional field.
func DefaultConfig() Config {
	return Config{
		Overlap:      0.1,
		Outlier:      0.1,
		OutlierMax:   10,
		T:            3,
		Corr:         0.8,
		StartSize:    100,
		EndSize:      1000,
		IntervalSize: 100,
		Mode:         sketch.ModeIP,
		Iterations:   100,
		Length:       datagen.DefaultLength,
	}
}

// Validate checks that a run can start with c.
func (c Config) Validate() error {
	switch {
	case c.BlobName == "":
		return fmt.Errorf("%w: blob name is required", ErrInvalidConfig)
	case len(c.Families) == 0:
		return fmt.Errorf("%w: at least one sketch family is required", ErrInvalidConfig)
	case c.T <= 0:
		return fmt.Errorf("%w: t must be positive, got %d", ErrInvalidConfig, c.T)
	case c.StartSize <= 0 || c.EndSize < c.StartSize:
		return fmt.Errorf("%w: storage sizes [%d, %d]", ErrInvalidConfig, c.StartSize, c.EndSize)
	case c.IntervalSize <= 0:
		return fmt.Errorf("%w: interval size must be positive, got %d", ErrInvalidConfig, c.IntervalSize)
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations must not be negative, got %d", ErrInvalidConfig, c.Iterations)
	case c.OutlierMax < 0:
		return fmt.Errorf("%w: outlier max must not be negative, got %d", ErrInvalidConfig, c.OutlierMax)
	}
	for _, f := range c.Families {
		if !f.Valid() {
			return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, sketch.ErrUnknownFamily, uint8(f))
		}
	}
	for f, n := range c.FamilyTrials {
		if !f.Valid() || n < 0 {
			return fmt.Errorf("%w: trial limit %s=%d", ErrInvalidConfig, f, n)
		}
	}
	if err := c.Data().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// StorageSizes returns the storage sizes from StartSize to EndSize inclusive.
func (c Config) StorageSizes() []int {
	if c.IntervalSize <= 0 {
		return nil
	}
	var sizes []int
	for s := c.StartSize; s <= c.EndSize; s += c.IntervalSize {
		sizes = append(sizes, s)
	}
	return sizes
}

// Data returns the generator configuration of a trial.
func (c Config) Data() datagen.Config {
	half := float64(c.OutlierMax / 2)
	return datagen.Config{
		Length:          c.Length,
		NonZero:         c.NonZero,
		Overlap:         c.Overlap,
		Corr:            c.Corr,
		OutlierFraction: c.Outlier,
		OutlierMean:     half,
		OutlierStd:      half,
	}
}

// Runs reports whether family f estimates the given trial.
func (c Config) Runs(f sketch.Family, trial int) bool {
	limit, ok := c.FamilyTrials[f]
	return !ok || trial < limit
}

// ParseFamilyTrials parses limits of the form "kmv=100,ps=100".
func ParseFamilyTrials(s string) (map[sketch.Family]int, error) {
	limits := make(map[sketch.Family]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: trial limit %q is not name=count", ErrInvalidConfig, part)
		}
		f, err := sketch.ParseFamily(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: trial limit %q", ErrInvalidConfig, part)
		}
		limits[f] = n
	}
	return limits, nil
}
