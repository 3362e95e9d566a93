package assets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/darmiel/rtcmint/internal/core"
)

// rangePattern is the only accepted Range grammar: a single "bytes=<start>-<end?>".
// Suffix ranges ("bytes=-500") and multiple ranges are not supported.
var rangePattern = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

// ByteRange is an inclusive byte range with Start <= End < size.
type ByteRange struct {
	Start int64
	End   int64
}

// Length is the number of bytes in the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ContentRange formats the Content-Range header value.
func (r ByteRange) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// ParseRange parses header against a resource of the given size. An omitted end
// defaults to size-1. Every failure is a KindRangeNotSatisfiable error.
func ParseRange(header string, size int64) (ByteRange, error) {
	m := rangePattern.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return ByteRange{}, core.RangeNotSatisfiable(size, fmt.Errorf("unsupported range %q", header))
	}

	start, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return ByteRange{}, core.RangeNotSatisfiable(size, err)
	}
	end := size - 1
	if m[2] != "" {
		if end, err = strconv.ParseInt(m[2], 10, 64); err != nil {
			return ByteRange{}, core.RangeNotSatisfiable(size, err)
		}
	}

	if start >= size || end >= size || start > end {
		return ByteRange{}, core.RangeNotSatisfiable(size,
			fmt.Errorf("range %d-%d outside of %d bytes", start, end, size))
	}
	return ByteRange{Start: start, End: end}, nil
}
