package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kpumuk/lazyscope/internal/series"
)

// Errors returned while parsing a CSV file.
var (
	ErrFileEmpty           = errors.New("the file is empty")
	ErrInvalidHeader       = errors.New("the header of the file is malformed")
	ErrInvalidSamplingRate = errors.New("the sampling rate could not be parsed")
	ErrNoParser            = errors.New("no parser for this file")
)

// scopeSampleRate is the fixed rate of OmnAIScope 1.1.1 exports.
const scopeSampleRate = 100_000

// ParsedFile is the result of importing one file.
type ParsedFile struct {
	Batches []series.Batch
}

// ParseCSV detects the format of a file and parses it. name is used as
// the channel id for single-column files.
//
// Supported layouts:
//   - "# source:" / "# version:" headers (OmnAIScope-DataServer 1.1.1 and
//     dummy data 1.0.0 exports),
//   - the legacy six-field header name,vin,kilometers,manufacturer,id,rate
//     followed by one value per line,
//   - a plain table with a timestamp column and one column per channel.
func ParseCSV(name, content string) (ParsedFile, error) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ParsedFile{}, ErrFileEmpty
	}

	switch {
	case len(lines) >= 2 && strings.HasPrefix(lines[0], "# source:") && strings.HasPrefix(lines[1], "# version:"):
		return parseTagged(lines)
	case len(strings.Split(lines[0], ",")) == 6 && !strings.HasPrefix(strings.ToLower(lines[0]), "timestamp"):
		return parseLegacy(lines)
	default:
		return parseTable(name, lines)
	}
}

func parseTagged(lines []string) (ParsedFile, error) {
	src := strings.TrimSpace(strings.TrimPrefix(lines[0], "# source:"))
	version := strings.TrimSpace(strings.TrimPrefix(lines[1], "# version:"))
	body := lines[2:]
	switch src + ":" + version {
	case "OmnAIScope-DataServer:1.1.1":
		return parseScope111(body)
	case "dummy data:1.0.0":
		return parseTable("dummy data", body)
	}
	return ParsedFile{}, fmt.Errorf("%w: %s %s", ErrNoParser, src, version)
}

// parseScope111 reads an OmnAIScope export: an id row, a units row, then
// seconds,value rows. Time is shifted so the first row is zero and the
// rate is reduced to one sample per millisecond.
func parseScope111(body []string) (ParsedFile, error) {
	if len(body) < 3 {
		return ParsedFile{}, fmt.Errorf("%w: no data rows", ErrFileEmpty)
	}
	id := strings.Split(body[0], ",")
	if len(id) < 2 {
		return ParsedFile{}, ErrInvalidHeader
	}
	name := strings.TrimSpace(id[1])

	records, err := readRecords(body[2:])
	if err != nil {
		return ParsedFile{}, err
	}
	if len(records) == 0 {
		return ParsedFile{}, fmt.Errorf("%w: no measurement values", ErrFileEmpty)
	}
	first, err := strconv.ParseFloat(strings.TrimSpace(records[0][0]), 64)
	if err != nil {
		return ParsedFile{}, fmt.Errorf("%w: first timestamp: %w", ErrInvalidHeader, err)
	}

	keepEvery := scopeSampleRate / 1000
	samples := make([]series.Sample, 0, len(records)/keepEvery+1)
	for i, rec := range records {
		if i%keepEvery != 0 || len(rec) < 2 {
			continue
		}
		sec, err1 := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		v, err2 := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		samples = append(samples, series.Sample{Timestamp: (sec - first) * 1000, Value: v})
	}
	return ParsedFile{Batches: []series.Batch{{Channel: name, Samples: samples}}}, nil
}

// parseLegacy reads the old desktop export: a six-field header whose last
// two fields are the device id and sample rate, then one value per line.
func parseLegacy(lines []string) (ParsedFile, error) {
	info := strings.Split(lines[0], ",")
	if len(info) != 6 {
		return ParsedFile{}, ErrInvalidHeader
	}
	name := strings.TrimSpace(info[4])
	rate, err := strconv.ParseFloat(strings.TrimSpace(info[5]), 64)
	if err != nil || rate <= 0 || math.IsInf(rate, 0) {
		return ParsedFile{}, ErrInvalidSamplingRate
	}
	keepEvery := 1.0
	if rate > 1000 {
		keepEvery = rate / 1000
	}
	samples := make([]series.Sample, 0, len(lines)-1)
	for i, line := range lines[1:] {
		if math.Mod(float64(i), keepEvery) != 0 {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			continue
		}
		samples = append(samples, series.Sample{Timestamp: float64(i) / rate * 1000, Value: v})
	}
	return ParsedFile{Batches: []series.Batch{{Channel: name, Samples: samples}}}, nil
}

// parseTable reads a header row naming the columns. The first column is
// the timestamp in Unix ms; a lone "value" column is named after the file.
func parseTable(name string, lines []string) (ParsedFile, error) {
	records, err := readRecords(lines)
	if err != nil {
		return ParsedFile{}, err
	}
	if len(records) == 0 {
		return ParsedFile{}, ErrFileEmpty
	}
	header := records[0]
	if len(header) < 2 || !strings.EqualFold(strings.TrimSpace(header[0]), "timestamp") {
		return ParsedFile{}, fmt.Errorf("%w: want timestamp,<channel>... got %q", ErrInvalidHeader, strings.Join(header, ","))
	}
	channels := make([]string, len(header)-1)
	for i, h := range header[1:] {
		channels[i] = strings.TrimSpace(h)
	}
	if len(channels) == 1 && strings.EqualFold(channels[0], "value") && name != "" {
		channels[0] = name
	}

	batches := make([]series.Batch, len(channels))
	for i, ch := range channels {
		batches[i] = series.Batch{Channel: ch}
	}
	for _, rec := range records[1:] {
		ts, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			continue
		}
		for i := range channels {
			if i+1 >= len(rec) {
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				continue
			}
			batches[i].Samples = append(batches[i].Samples, series.Sample{Timestamp: ts, Value: v})
		}
	}
	return ParsedFile{Batches: batches}, nil
}

// readRecords parses CSV rows, skipping blank and "#" comment lines.
func readRecords(lines []string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

// CSV imports one or more files. It has no background work: Connect loads
// everything at once.
type CSV struct {
	base
	files []string
}

// NewCSV creates a CSV source for opts.Files.
func NewCSV(opts Options) (*CSV, error) {
	if len(opts.Files) == 0 {
		return nil, errors.New("csv source: no files given")
	}
	c := &CSV{files: opts.Files}
	c.init(string(KindCSV), opts.Logger, opts.Tracker)
	return c, nil
}

// Connect reads every file. Files that fail to parse are reported and
// skipped; Connect fails only when none could be loaded.
func (c *CSV) Connect(ctx context.Context) error {
	if c.running() {
		return nil
	}
	var loaded int
	var errs []error
	for _, path := range c.files {
		if err := c.load(path); err != nil {
			errs = append(errs, err)
			c.report(err)
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return errors.Join(errs...)
	}
	c.start(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	return nil
}

func (c *CSV) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parsed, err := ParseCSV(name, string(data))
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	for _, b := range parsed.Batches {
		c.addDevice(Device{UUID: b.Channel})
	}
	accepted := c.store.AppendBatches(parsed.Batches...)
	c.logger.Info("imported file", "path", path, "channels", len(parsed.Batches), "samples", accepted)
	return nil
}
