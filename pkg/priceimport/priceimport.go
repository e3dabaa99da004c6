// Package priceimport reads hourly price series uploaded as CSV or JSON.
package priceimport

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/raterudder/retrofit/pkg/log"
	"github.com/raterudder/retrofit/pkg/types"
)

// Format is a supported price file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrNoPrices is returned when a file has no usable rows.
var ErrNoPrices = errors.New("no valid price points")

var (
	hourKeys  = []string{"hour", "Hour", "小时"}
	priceKeys = []string{"price", "Price", "电价"}
)

// FormatFromFilename picks the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported price file: %s", name)
	}
}

// Parse reads r in the given format and returns points sorted by hour, with
// out-of-range hours dropped and the last value winning for repeated hours.
func Parse(ctx context.Context, r io.Reader, format Format) ([]types.HourlyPricePoint, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(ctx, r)
	case FormatJSON:
		return ParseJSON(ctx, r)
	default:
		return nil, fmt.Errorf("unsupported price format: %q", format)
	}
}

// ParseCSV reads hour,price rows. A leading header row is skipped.
func ParseCSV(ctx context.Context, r io.Reader) ([]types.HourlyPricePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var raw []types.HourlyPricePoint
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		hour, herr := parseHour(record[0])
		price, perr := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if herr != nil || perr != nil {
			if line > 1 {
				log.Ctx(ctx).DebugContext(ctx, "skipping price row", slog.Int("line", line), slog.Any("record", record))
			}
			continue
		}
		raw = append(raw, types.HourlyPricePoint{Hour: hour, Price: price})
	}
	return normalize(ctx, raw)
}

// ParseJSON reads an array of objects keyed by hour and price. Values may be
// numbers or numeric strings.
func ParseJSON(ctx context.Context, r io.Reader) ([]types.HourlyPricePoint, error) {
	var rows []map[string]any
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	raw := make([]types.HourlyPricePoint, 0, len(rows))
	for i, row := range rows {
		hv, ok := lookup(row, hourKeys)
		if !ok {
			continue
		}
		pv, ok := lookup(row, priceKeys)
		if !ok {
			continue
		}
		hour, herr := parseHour(fmt.Sprint(hv))
		price, perr := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(pv)), 64)
		if herr != nil || perr != nil {
			log.Ctx(ctx).DebugContext(ctx, "skipping price row", slog.Int("index", i))
			continue
		}
		raw = append(raw, types.HourlyPricePoint{Hour: hour, Price: price})
	}
	return normalize(ctx, raw)
}

func lookup(row map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func parseHour(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("hour %v is not whole", f)
	}
	return int(f), nil
}

func normalize(ctx context.Context, raw []types.HourlyPricePoint) ([]types.HourlyPricePoint, error) {
	byHour := make(map[int]float64, 24)
	for _, p := range raw {
		if p.Hour < 0 || p.Hour > 23 {
			continue
		}
		if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			continue
		}
		byHour[p.Hour] = p.Price
	}
	if len(byHour) == 0 {
		return nil, ErrNoPrices
	}

	out := make([]types.HourlyPricePoint, 0, len(byHour))
	for h, p := range byHour {
		out = append(out, types.HourlyPricePoint{Hour: h, Price: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })

	log.Ctx(ctx).DebugContext(
		ctx,
		"imported prices",
		slog.Int("rows", len(raw)),
		slog.Int("hours", len(out)),
	)
	return out, nil
}
