package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/logging"

	"github.com/kpumuk/lazyscope/internal/devtools"
	"github.com/kpumuk/lazyscope/internal/series"
)

func init() {
	redis.SetLogger(&logging.VoidLogger{})
}

const (
	// DefaultStream is the stream key read when none is configured.
	DefaultStream = "lazyscope:samples"

	defaultReadCount = 512
	defaultReadBlock = time.Second
)

// Redis reads samples from a Redis stream. Each entry carries the fields
// device, timestamp (Unix ms) and value. Device colours live in the hash
// "<stream>:devices" as uuid → "r,g,b".
type Redis struct {
	base
	client     *redis.Client
	stream     string
	displayURL string
	lastID     string
	block      time.Duration
	count      int64
}

// NewRedis creates a Redis stream source from a redis:// URL.
func NewRedis(opts Options) (*Redis, error) {
	redisURL := opts.RedisURL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	ropts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	ropts.MaxRetries = -1
	ropts.DialTimeout = 2 * time.Second
	ropts.WriteTimeout = 2 * time.Second

	block := opts.ReadBlock
	if block <= 0 {
		block = defaultReadBlock
	}
	// A blocking XREAD must not hit the socket read deadline first.
	ropts.ReadTimeout = block + 2*time.Second

	client := redis.NewClient(ropts)
	if opts.Tracker != nil {
		client.AddHook(opts.Tracker.Hook())
	}
	return newRedis(client, sanitizeRedisURL(redisURL), opts), nil
}

func newRedis(client *redis.Client, displayURL string, opts Options) *Redis {
	r := &Redis{
		client:     client,
		stream:     opts.Stream,
		displayURL: displayURL,
		lastID:     "$",
		block:      opts.ReadBlock,
		count:      opts.ReadCount,
	}
	if r.stream == "" {
		r.stream = DefaultStream
	}
	if opts.FromStart {
		r.lastID = "0"
	}
	if r.block <= 0 {
		r.block = defaultReadBlock
	}
	if r.count <= 0 {
		r.count = defaultReadCount
	}
	r.init(string(KindRedis), opts.Logger, opts.Tracker)
	return r
}

func (r *Redis) ctx(ctx context.Context) context.Context {
	return devtools.WithOrigin(ctx, "source.redis")
}

// Connect checks the server, loads device colours and starts reading.
func (r *Redis) Connect(ctx context.Context) error {
	if r.running() {
		return nil
	}
	if err := r.client.Ping(r.ctx(ctx)).Err(); err != nil {
		return fmt.Errorf("connect to %s: %w", r.displayURL, err)
	}
	if err := r.loadDevices(ctx); err != nil {
		return err
	}
	r.start(ctx, r.run)
	return nil
}

// Close disconnects and releases the client.
func (r *Redis) Close() error {
	r.Disconnect()
	return r.client.Close()
}

func (r *Redis) devicesKey() string { return r.stream + ":devices" }

func (r *Redis) loadDevices(ctx context.Context) error {
	colors, err := r.client.HGetAll(r.ctx(ctx), r.devicesKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("load devices: %w", err)
	}
	for uuid, raw := range colors {
		d := Device{UUID: uuid}
		if c, err := ParseRGB(raw); err == nil {
			d.Color, d.HasColor = c, true
		} else {
			r.logger.Warn("ignoring device colour", "device", uuid, "error", err)
		}
		r.addDevice(d)
	}
	return nil
}

func (r *Redis) run(ctx context.Context) error {
	for {
		if err := r.readOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.report(err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
	}
}

// readOnce performs one XREAD and appends what it returns.
func (r *Redis) readOnce(ctx context.Context) error {
	streams, err := r.client.XRead(r.ctx(ctx), &redis.XReadArgs{
		Streams: []string{r.stream, r.lastID},
		Count:   r.count,
		Block:   r.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read stream %s: %w", r.stream, err)
	}

	var batches []series.Batch
	index := map[string]int{}
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			r.lastID = msg.ID
			device, sample, err := parseStreamEntry(msg.Values)
			if err != nil {
				r.logger.Debug("skipping stream entry", "id", msg.ID, "error", err)
				continue
			}
			i, ok := index[device]
			if !ok {
				i = len(batches)
				index[device] = i
				batches = append(batches, series.Batch{Channel: device})
				if _, known := Lookup(r.Devices(), device); !known {
					r.addDevice(r.fetchDevice(ctx, device))
				}
			}
			batches[i].Samples = append(batches[i].Samples, sample)
		}
	}
	if len(batches) > 0 {
		r.store.AppendBatches(batches...)
	}
	return nil
}

func (r *Redis) fetchDevice(ctx context.Context, uuid string) Device {
	d := Device{UUID: uuid}
	raw, err := r.client.HGet(r.ctx(ctx), r.devicesKey(), uuid).Result()
	if err != nil {
		return d
	}
	if c, err := ParseRGB(raw); err == nil {
		d.Color, d.HasColor = c, true
	}
	return d
}

func parseStreamEntry(values map[string]any) (string, series.Sample, error) {
	device, _ := values["device"].(string)
	if device == "" {
		return "", series.Sample{}, errors.New("missing device")
	}
	ts, err := parseNumber(values["timestamp"])
	if err != nil {
		return "", series.Sample{}, fmt.Errorf("timestamp: %w", err)
	}
	v, err := parseNumber(values["value"])
	if err != nil {
		return "", series.Sample{}, fmt.Errorf("value: %w", err)
	}
	return device, series.Sample{Timestamp: ts, Value: v}, nil
}

func parseNumber(raw any) (float64, error) {
	s, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected %T", raw)
	}
	return strconv.ParseFloat(s, 64)
}

// Publish appends one sample to the stream. Used by the demo feeder and
// tests.
func Publish(ctx context.Context, client *redis.Client, stream, device string, s series.Sample) error {
	return client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"device":    device,
			"timestamp": strconv.FormatFloat(s.Timestamp, 'f', -1, 64),
			"value":     strconv.FormatFloat(s.Value, 'f', -1, 64),
		},
	}).Err()
}

func sanitizeRedisURL(redisURL string) string {
	if redisURL == "" {
		return ""
	}
	parsed, err := url.Parse(redisURL)
	if err != nil {
		return redisURL
	}
	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = nil
		} else {
			parsed.User = url.User(username)
		}
	}
	return parsed.String()
}
