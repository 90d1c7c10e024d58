package graph

// Margin is the space reserved around the plot area.
type Margin struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// DefaultMargin leaves room for axis labels on a pixel canvas.
var DefaultMargin = Margin{Top: 20, Right: 30, Bottom: 40, Left: 60}

// Viewport is the outer size of the plot in pixels.
type Viewport struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Margin Margin `json:"margin"`
}

// InnerWidth is the drawable width. Never less than 1.
func (v Viewport) InnerWidth() int {
	return max(v.Width-v.Margin.Left-v.Margin.Right, 1)
}

// InnerHeight is the drawable height. Never less than 1.
func (v Viewport) InnerHeight() int {
	return max(v.Height-v.Margin.Top-v.Margin.Bottom, 1)
}
