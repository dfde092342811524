package ffmpeg

import "strings"

// VideoFilterChain builds video filter chains.
type VideoFilterChain struct {
	filters []string
}

// NewVideoFilterChain creates a new empty filter chain.
func NewVideoFilterChain() *VideoFilterChain {
	return &VideoFilterChain{}
}

// AddEvenDimensions pads odd frame sizes by one pixel when the output pixel
// format is chroma subsampled, which most encoders require.
func (c *VideoFilterChain) AddEvenDimensions(width, height int, pixFmt string) *VideoFilterChain {
	if !subsampled(pixFmt) || (width%2 == 0 && height%2 == 0) {
		return c
	}
	return c.AddFilter("pad=ceil(iw/2)*2:ceil(ih/2)*2")
}

// AddFilter adds a custom filter to the chain.
func (c *VideoFilterChain) AddFilter(filter string) *VideoFilterChain {
	if filter != "" {
		c.filters = append(c.filters, filter)
	}
	return c
}

// Build builds the filter chain into a single filter string.
// Returns empty string if no filters are present.
func (c *VideoFilterChain) Build() string {
	if len(c.filters) == 0 {
		return ""
	}
	return strings.Join(c.filters, ",")
}

// IsEmpty returns true if no filters are present.
func (c *VideoFilterChain) IsEmpty() bool {
	return len(c.filters) == 0
}

func subsampled(pixFmt string) bool {
	return strings.HasPrefix(pixFmt, "yuv420") || strings.HasPrefix(pixFmt, "yuv422") || strings.HasPrefix(pixFmt, "nv12")
}
