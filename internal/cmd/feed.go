package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/kpumuk/lazyscope/internal/source"
)

type feedOptions struct {
	stream    string
	channels  int
	frequency float64
	interval  time.Duration
	// count stops the feed after that many samples per channel; zero runs
	// until interrupted.
	count int
}

func newFeedCmd() *cobra.Command {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Publish synthetic sine samples to a Redis stream.",
		Long: "Publish synthetic sine samples to a Redis stream in the format the redis " +
			"source reads, for demos and for testing a deployment end to end.",
		Args: cobra.NoArgs,
	}

	flags := feedCmd.Flags()
	flags.String("redis", "redis://127.0.0.1:6379/0", "redis URL")
	flags.String("stream", source.DefaultStream, "stream to append to")
	flags.Int("channels", 3, "number of channels")
	flags.Float64("frequency", 0.5, "sine frequency in Hz")
	flags.Duration("interval", 50*time.Millisecond, "time between samples")
	flags.Int("count", 0, "samples per channel before exiting (0 runs until interrupted)")

	feedCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		redisURL, err := cmd.Flags().GetString("redis")
		if err != nil {
			return fmt.Errorf("parse redis flag: %w", err)
		}
		var opts feedOptions
		if opts.stream, err = cmd.Flags().GetString("stream"); err != nil {
			return fmt.Errorf("parse stream flag: %w", err)
		}
		if opts.channels, err = cmd.Flags().GetInt("channels"); err != nil {
			return fmt.Errorf("parse channels flag: %w", err)
		}
		if opts.frequency, err = cmd.Flags().GetFloat64("frequency"); err != nil {
			return fmt.Errorf("parse frequency flag: %w", err)
		}
		if opts.interval, err = cmd.Flags().GetDuration("interval"); err != nil {
			return fmt.Errorf("parse interval flag: %w", err)
		}
		if opts.count, err = cmd.Flags().GetInt("count"); err != nil {
			return fmt.Errorf("parse count flag: %w", err)
		}

		ropts, err := redis.ParseURL(redisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(ropts)
		defer func() {
			_ = client.Close()
		}()

		n, err := feed(cmd.Context(), client, opts)
		cmd.Printf("published %d samples to %s\n", n, opts.stream)
		return err
	}

	return feedCmd
}

// feed runs a sine generator and forwards each new sample to the stream.
// It returns the number of entries written.
func feed(ctx context.Context, client *redis.Client, opts feedOptions) (int, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("ping redis: %w", err)
	}

	gen := source.NewSine(source.Options{
		Channels:  opts.channels,
		Frequency: opts.frequency,
		Interval:  opts.interval,
	})
	if err := gen.Connect(ctx); err != nil {
		return 0, fmt.Errorf("start generator: %w", err)
	}
	defer gen.Disconnect()

	store := gen.Store()
	published := make(map[string]int)
	total := 0
	for {
		select {
		case <-ctx.Done():
			return total, nil
		case <-store.Changed():
		}

		snap := store.Snapshot()
		done := len(snap.Order) > 0
		for _, channel := range snap.Order {
			samples := snap.Channels[channel]
			end := len(samples)
			if opts.count > 0 {
				end = min(end, opts.count)
			}
			for _, s := range samples[published[channel]:end] {
				if err := source.Publish(ctx, client, opts.stream, channel, s); err != nil {
					return total, fmt.Errorf("publish to %s: %w", opts.stream, err)
				}
				total++
			}
			published[channel] = end
			done = done && opts.count > 0 && end >= opts.count
		}
		if done {
			return total, nil
		}
	}
}
