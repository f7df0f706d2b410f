package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"s3-utils/core/aggregate"

	"github.com/dustin/go-humanize"
)

// Units selects the byte-size unit system.
type Units string

const (
	// UnitsBinary renders sizes with 2^10 suffixes (KiB, MiB, ...).
	UnitsBinary Units = "binary"
	// UnitsDecimal renders sizes with 10^3 suffixes (kB, MB, ...).
	UnitsDecimal Units = "decimal"
)

// Valid reports whether the unit system is one of the known values.
func (u Units) Valid() bool {
	return u == UnitsBinary || u == UnitsDecimal
}

// FormatBytes renders a byte count with a unit suffix.
func FormatBytes(n int64, units Units) string {
	if n < 0 {
		return "-" + formatAbs(uint64(-n), units)
	}
	return formatAbs(uint64(n), units)
}

// FormatBytesDelta is FormatBytes with an explicit "+" on positive values.
func FormatBytesDelta(n int64, units Units) string {
	if n > 0 {
		return "+" + FormatBytes(n, units)
	}
	return FormatBytes(n, units)
}

func formatAbs(n uint64, units Units) string {
	if units == UnitsDecimal {
		return humanize.Bytes(n)
	}
	return humanize.IBytes(n)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatCountDelta is FormatCount with an explicit "+" on positive values.
func FormatCountDelta(n int64) string {
	if n > 0 {
		return "+" + humanize.Comma(n)
	}
	return humanize.Comma(n)
}

// WriteText renders an accumulator as a human-readable table. It is a pure
// function of the accumulator; the only side effect is writing to w.
func WriteText(w io.Writer, acc *aggregate.Accumulator, units Units) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintf(tw, "objects\t%s\n", FormatCount(acc.Objects))
	fmt.Fprintf(tw, "total size\t%s\n", FormatBytes(acc.Bytes, units))

	if len(acc.Prefixes) > 0 || acc.Other.Objects > 0 {
		fmt.Fprintf(tw, "\nprefix\tobjects\tsize\n")
		for _, prefix := range sortedPrefixes(acc.Prefixes) {
			rollup := acc.Prefixes[prefix]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", prefix, FormatCount(rollup.Objects), FormatBytes(rollup.Bytes, units))
		}
		if acc.Other.Objects > 0 {
			fmt.Fprintf(tw, "(other)\t%s\t%s\n", FormatCount(acc.Other.Objects), FormatBytes(acc.Other.Bytes, units))
		}
	}

	if hasHistogram(acc) {
		fmt.Fprintf(tw, "\nsize bucket\tobjects\tsize\n")
		for _, bucket := range acc.Histogram {
			if bucket.Objects == 0 {
				continue
			}
			label := "> last bucket"
			if bucket.UpperBound > 0 {
				label = "<= " + formatAbs(bucket.UpperBound, units)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", label, FormatCount(bucket.Objects), FormatBytes(bucket.Bytes, units))
		}
	}

	return tw.Flush()
}

// WriteJSON renders a value as indented JSON for downstream tooling.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedPrefixes(prefixes map[string]aggregate.Rollup) []string {
	out := make([]string, 0, len(prefixes))
	for prefix := range prefixes {
		out = append(out, prefix)
	}
	sort.Strings(out)
	return out
}

func hasHistogram(acc *aggregate.Accumulator) bool {
	for _, bucket := range acc.Histogram {
		if bucket.Objects > 0 {
			return true
		}
	}
	return false
}
