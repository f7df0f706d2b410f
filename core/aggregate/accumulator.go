package aggregate

import (
	"fmt"
	"strings"

	"s3-utils/core/enumerate"
)

// Options tunes an Accumulator. The zero value gets sensible defaults.
type Options struct {
	// PrefixDepth is how many ancestor prefixes of each key are tracked
	// ("a/b/c" at depth 2 contributes to "a/" and "a/b/").
	PrefixDepth int
	// MaxPrefixes caps the number of distinct prefixes tracked; once the
	// cap is reached, unseen prefixes accumulate into Other.
	MaxPrefixes int
	// Boundaries are the inclusive upper bounds of the size histogram
	// buckets, in ascending order. Sizes above the last boundary land in
	// the overflow bucket.
	Boundaries []uint64
}

const (
	defaultPrefixDepth = 1
	defaultMaxPrefixes = 1024
)

// DefaultBoundaries returns power-of-two histogram boundaries from 1 KiB
// up to 1 TiB.
func DefaultBoundaries() []uint64 {
	var bounds []uint64
	for shift := 10; shift <= 40; shift++ {
		bounds = append(bounds, 1<<uint(shift))
	}
	return bounds
}

func (o Options) withDefaults() Options {
	if o.PrefixDepth <= 0 {
		o.PrefixDepth = defaultPrefixDepth
	}
	if o.MaxPrefixes <= 0 {
		o.MaxPrefixes = defaultMaxPrefixes
	}
	if len(o.Boundaries) == 0 {
		o.Boundaries = DefaultBoundaries()
	}
	return o
}

// Rollup is a count/size pair.
type Rollup struct {
	Objects int64 `json:"objects"`
	Bytes   int64 `json:"bytes"`
}

// HistogramBucket counts objects whose size is at most UpperBound and
// larger than the previous bucket's bound. The overflow bucket has
// UpperBound zero.
type HistogramBucket struct {
	UpperBound uint64 `json:"upper_bound"`
	Objects    int64  `json:"objects"`
	Bytes      int64  `json:"bytes"`
}

// Accumulator is the mutable aggregation state for one object stream.
// It is not safe for concurrent use; parallel enumerations each get their
// own Accumulator and are combined with Merge afterwards.
type Accumulator struct {
	// Objects is the total object count.
	Objects int64 `json:"objects"`
	// Bytes is the total byte size.
	Bytes int64 `json:"bytes"`
	// Histogram has one bucket per boundary plus a trailing overflow bucket.
	Histogram []HistogramBucket `json:"histogram"`
	// Prefixes maps each tracked ancestor prefix to its rollup.
	Prefixes map[string]Rollup `json:"prefixes"`
	// Other collects rollups for prefixes beyond the MaxPrefixes cap.
	Other Rollup `json:"other"`

	opts Options
}

// New creates an empty Accumulator with the given options.
func New(opts Options) *Accumulator {
	opts = opts.withDefaults()

	hist := make([]HistogramBucket, len(opts.Boundaries)+1)
	for i, bound := range opts.Boundaries {
		hist[i].UpperBound = bound
	}

	return &Accumulator{
		Histogram: hist,
		Prefixes:  make(map[string]Rollup),
		opts:      opts,
	}
}

// Add folds one object into the accumulator in O(1) additional memory.
func (a *Accumulator) Add(obj enumerate.Object) {
	a.Objects++
	a.Bytes += obj.Size

	i := a.bucketIndex(uint64(obj.Size))
	a.Histogram[i].Objects++
	a.Histogram[i].Bytes += obj.Size

	for _, prefix := range ancestorPrefixes(obj.Key, a.opts.PrefixDepth) {
		if rollup, ok := a.Prefixes[prefix]; ok {
			rollup.Objects++
			rollup.Bytes += obj.Size
			a.Prefixes[prefix] = rollup
		} else if len(a.Prefixes) < a.opts.MaxPrefixes {
			a.Prefixes[prefix] = Rollup{Objects: 1, Bytes: obj.Size}
		} else {
			a.Other.Objects++
			a.Other.Bytes += obj.Size
		}
	}
}

// Merge folds another accumulator into this one. The operation is
// associative and commutative, so accumulators from parallel enumerations
// of disjoint partitions can be combined in any order. Both accumulators
// must share histogram boundaries. The prefix cap is not enforced here:
// Merge unions rollups without dropping data.
func (a *Accumulator) Merge(b *Accumulator) error {
	if len(a.Histogram) != len(b.Histogram) {
		return fmt.Errorf("aggregate: cannot merge accumulators with %d and %d histogram buckets", len(a.Histogram), len(b.Histogram))
	}
	for i := range a.Histogram {
		if a.Histogram[i].UpperBound != b.Histogram[i].UpperBound {
			return fmt.Errorf("aggregate: histogram boundary mismatch at bucket %d", i)
		}
	}

	a.Objects += b.Objects
	a.Bytes += b.Bytes
	for i := range a.Histogram {
		a.Histogram[i].Objects += b.Histogram[i].Objects
		a.Histogram[i].Bytes += b.Histogram[i].Bytes
	}
	for prefix, rollup := range b.Prefixes {
		cur := a.Prefixes[prefix]
		cur.Objects += rollup.Objects
		cur.Bytes += rollup.Bytes
		a.Prefixes[prefix] = cur
	}
	a.Other.Objects += b.Other.Objects
	a.Other.Bytes += b.Other.Bytes
	return nil
}

// bucketIndex returns the histogram bucket for a size: the first boundary
// that is >= size, or the overflow bucket.
func (a *Accumulator) bucketIndex(size uint64) int {
	for i, bound := range a.opts.Boundaries {
		if size <= bound {
			return i
		}
	}
	return len(a.Histogram) - 1
}

// ancestorPrefixes returns the "/"-terminated ancestor prefixes of key up
// to the given depth. Keys without a separator have none.
func ancestorPrefixes(key string, depth int) []string {
	var prefixes []string
	end := 0
	for d := 0; d < depth; d++ {
		i := strings.Index(key[end:], "/")
		if i < 0 {
			break
		}
		end += i + 1
		if end == len(key) {
			break
		}
		prefixes = append(prefixes, key[:end])
	}
	return prefixes
}
