package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kpumuk/lazyscope/internal/series"
)

// DefaultSkipFrames is how many frames are dropped after the handshake;
// the scope server's first messages are not measurement data.
const DefaultSkipFrames = 2

// deviceOverview is the body of GET /UUID.
type deviceOverview struct {
	Devices []struct {
		UUID string `json:"UUID"`
	} `json:"devices"`
	Colors []struct {
		Color RGB `json:"color"`
	} `json:"colors"`
}

// scopeFrame is one websocket data message. Value[i] belongs to Devices[i].
type scopeFrame struct {
	Devices []string `json:"devices"`
	Data    []struct {
		Timestamp *float64  `json:"timestamp"`
		Value     []float64 `json:"value"`
	} `json:"data"`
}

// WebSocket speaks the OmnAIScope data server protocol.
type WebSocket struct {
	base
	httpURL    *url.URL
	skipFrames int
	httpClient *http.Client
	dialer     *websocket.Dialer
	conn       *websocket.Conn
}

// NewWebSocket creates a source for the server at opts.URL.
func NewWebSocket(opts Options) (*WebSocket, error) {
	raw := opts.URL
	if raw == "" {
		raw = "http://127.0.0.1:8080"
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return nil, fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}
	skip := opts.SkipFrames
	if skip < 0 {
		skip = 0
	}
	w := &WebSocket{
		httpURL:    u,
		skipFrames: skip,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		dialer:     websocket.DefaultDialer,
	}
	w.init(string(KindWebSocket), opts.Logger, opts.Tracker)
	return w, nil
}

func (w *WebSocket) endpoint(path string, ws bool) string {
	u := *w.httpURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if ws {
		if u.Scheme == "https" {
			u.Scheme = "wss"
		} else {
			u.Scheme = "ws"
		}
	}
	return u.String()
}

// Connect fetches the device table, opens the socket and subscribes to
// every device.
func (w *WebSocket) Connect(ctx context.Context) error {
	if w.running() {
		return nil
	}
	devices, err := w.fetchDevices(ctx)
	if err != nil {
		return err
	}
	w.setDevices(devices)

	conn, _, err := w.dialer.DialContext(ctx, w.endpoint("/ws", true), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", w.endpoint("/ws", true), err)
	}
	uuids := make([]string, len(devices))
	for i, d := range devices {
		uuids[i] = d.UUID
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(strings.Join(uuids, " "))); err != nil {
		_ = conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	w.conn = conn
	w.start(ctx, w.run)
	return nil
}

func (w *WebSocket) fetchDevices(ctx context.Context) ([]Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint("/UUID", false), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch devices: %w", err)
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch devices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch devices: unexpected status %s", resp.Status)
	}
	var overview deviceOverview
	if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
		return nil, fmt.Errorf("fetch devices: decode: %w", err)
	}
	devices := make([]Device, len(overview.Devices))
	for i, d := range overview.Devices {
		devices[i] = Device{UUID: d.UUID}
		if i < len(overview.Colors) {
			devices[i].Color, devices[i].HasColor = overview.Colors[i].Color, true
		}
	}
	return devices, nil
}

func (w *WebSocket) run(ctx context.Context) error {
	conn := w.conn
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	received := 0
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return ctx.Err()
			}
			return fmt.Errorf("read frame: %w", err)
		}
		received++
		if received <= w.skipFrames {
			continue
		}
		batches, err := decodeFrame(data)
		if err != nil {
			w.report(err)
			continue
		}
		w.store.AppendBatches(batches...)
	}
}

var errBadFrame = errors.New("unrecognised frame")

// decodeFrame turns a data message into one batch per device.
func decodeFrame(data []byte) ([]series.Batch, error) {
	var frame scopeFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadFrame, err)
	}
	if frame.Devices == nil || frame.Data == nil {
		return nil, fmt.Errorf("%w: missing devices or data", errBadFrame)
	}
	for i, point := range frame.Data {
		if point.Timestamp == nil || point.Value == nil {
			return nil, fmt.Errorf("%w: entry %d lacks timestamp or value", errBadFrame, i)
		}
	}
	batches := make([]series.Batch, len(frame.Devices))
	for d, uuid := range frame.Devices {
		samples := make([]series.Sample, 0, len(frame.Data))
		for _, point := range frame.Data {
			if d >= len(point.Value) {
				continue
			}
			samples = append(samples, series.Sample{Timestamp: *point.Timestamp, Value: point.Value[d]})
		}
		batches[d] = series.Batch{Channel: uuid, Samples: samples}
	}
	return batches, nil
}
