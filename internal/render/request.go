package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/mathutil"
	"github.com/kpumuk/lazyscope/internal/series"
)

// ErrMalformedRequest is wrapped by every validation failure.
var ErrMalformedRequest = errors.New("malformed render request")

// Dimensions is the outer plot size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DomainPair carries the live domain. Slices rather than arrays so a
// decoded message with the wrong arity is detectable.
type DomainPair struct {
	XDomain []float64 `json:"xDomain"`
	YDomain []float64 `json:"yDomain"`
}

// Domain converts a validated pair.
func (d DomainPair) Domain() graph.Domain {
	var out graph.Domain
	copy(out.X[:], d.XDomain)
	copy(out.Y[:], d.YDomain)
	return out
}

// Request is the message handed to the worker.
type Request struct {
	Seq        uint64                      `json:"seq"`
	Dimensions Dimensions                  `json:"dimensions"`
	Margin     graph.Margin                `json:"margin"`
	Domain     DomainPair                  `json:"domain"`
	Series     map[string][]series.Sample `json:"series"`
	Order      []string                    `json:"order,omitempty"`
}

// NewRequest captures a frame. The domain sent is the live domain, so the
// worker's rebuilt scales equal the frame's live scales.
func NewRequest(seq uint64, frame graph.Frame) Request {
	x := frame.Live.X.Domain()
	y := frame.Live.Y.Domain()
	return Request{
		Seq: seq,
		Dimensions: Dimensions{
			Width:  frame.Viewport.Width,
			Height: frame.Viewport.Height,
		},
		Margin: frame.Viewport.Margin,
		Domain: DomainPair{
			XDomain: []float64{x[0], x[1]},
			YDomain: []float64{y[0], y[1]},
		},
		Series: frame.Snapshot.Channels,
		Order:  frame.Snapshot.Order,
	}
}

// Viewport returns the viewport the request describes.
func (r Request) Viewport() graph.Viewport {
	return graph.Viewport{Width: r.Dimensions.Width, Height: r.Dimensions.Height, Margin: r.Margin}
}

// Points returns the total number of samples carried.
func (r Request) Points() int {
	total := 0
	for _, samples := range r.Series {
		total += len(samples)
	}
	return total
}

// Validate checks the shape of the message.
func (r Request) Validate() error {
	if r.Dimensions.Width <= 0 || r.Dimensions.Height <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %dx%d",
			ErrMalformedRequest, r.Dimensions.Width, r.Dimensions.Height)
	}
	if err := validatePair("xDomain", r.Domain.XDomain); err != nil {
		return err
	}
	if err := validatePair("yDomain", r.Domain.YDomain); err != nil {
		return err
	}
	if r.Series == nil {
		return fmt.Errorf("%w: series is missing", ErrMalformedRequest)
	}
	for id, samples := range r.Series {
		if id == "" {
			return fmt.Errorf("%w: series has an empty channel id", ErrMalformedRequest)
		}
		for i, s := range samples {
			if !s.Valid() {
				return fmt.Errorf("%w: series %q sample %d is not finite", ErrMalformedRequest, id, i)
			}
		}
	}
	return nil
}

func validatePair(name string, pair []float64) error {
	if len(pair) != 2 {
		return fmt.Errorf("%w: %s must have 2 values, got %d", ErrMalformedRequest, name, len(pair))
	}
	if !mathutil.Finite(pair...) {
		return fmt.Errorf("%w: %s contains a non-finite value", ErrMalformedRequest, name)
	}
	return nil
}

// DecodeRequest parses and validates a JSON request. Unknown fields and
// non-numeric values are rejected.
func DecodeRequest(data []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}
