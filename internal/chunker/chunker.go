// Package chunker splits transcript text into overlapping fixed-size windows.
package chunker

import (
	"fmt"

	"github.com/yildizm/vidsynth/internal/common"
)

const (
	// DefaultMaxSize is the default maximum segment length in runes
	DefaultMaxSize = 10000
	// DefaultOverlap is the default number of runes shared by adjacent segments
	DefaultOverlap = 1000
)

// Options configures segment size and overlap
type Options struct {
	MaxSize int `yaml:"max_size" json:"max_size"`
	Overlap int `yaml:"overlap" json:"overlap"`
}

// DefaultOptions returns the default chunking options
func DefaultOptions() Options {
	return Options{
		MaxSize: DefaultMaxSize,
		Overlap: DefaultOverlap,
	}
}

// Validate checks that the options allow forward progress
func (o Options) Validate() error {
	if o.MaxSize <= 0 {
		return common.NewConfigError("max_size", fmt.Sprintf("must be positive, got %d", o.MaxSize))
	}
	if o.Overlap < 0 {
		return common.NewConfigError("overlap", fmt.Sprintf("must not be negative, got %d", o.Overlap))
	}
	if o.Overlap >= o.MaxSize {
		return common.NewConfigError("overlap",
			fmt.Sprintf("must be less than max_size (%d >= %d)", o.Overlap, o.MaxSize))
	}
	return nil
}

// Chunk splits text with the receiver's settings
func (o Options) Chunk(text string) ([]common.Segment, error) {
	return Chunk(text, o.MaxSize, o.Overlap)
}

// Chunk splits text into windows of at most maxSize runes. Each window after
// the first starts overlap runes before the end of the previous one, and the
// last window always ends at the end of the text.
func Chunk(text string, maxSize, overlap int) ([]common.Segment, error) {
	opts := Options{MaxSize: maxSize, Overlap: overlap}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	n := len(runes)
	segments := make([]common.Segment, 0, estimateCount(n, maxSize, overlap))
	if n == 0 {
		return segments, nil
	}

	start := 0
	for {
		end := start + maxSize
		if end > n {
			end = n
		}

		segments = append(segments, common.Segment{
			Index: len(segments),
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})

		if end == n {
			break
		}
		start = end - overlap
	}

	return segments, nil
}

// estimateCount returns the number of windows Chunk will produce
func estimateCount(n, maxSize, overlap int) int {
	if n <= maxSize {
		return 1
	}
	step := maxSize - overlap
	return 1 + (n-maxSize+step-1)/step
}
