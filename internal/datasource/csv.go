/*

This package loads historical yield series from CSV files into ordered
yield snapshots. The expected layout is wide: a timestamp column followed
by one basis-point column per asset.

	timestamp,cmBTC,cmUSD,cmBRL
	2024-01-01,520,1250,2150

The loader fails on anything it cannot parse; ordering and per-asset
completeness are re-validated by the backtester, which owns that contract.

*/

package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/usecambi/cambi-ccyoe/internal/logger"
	"github.com/usecambi/cambi-ccyoe/internal/types"
)

var (
	ErrEmptyFile     = errors.New("yield history file contains no data rows")
	ErrMissingHeader = errors.New("yield history file has no usable header")
)

var dataLogger = logger.GetForComponent("data_source")

// Accepted timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LoadSnapshotsCSV reads a wide-format yield history file and returns one
// snapshot per row, in file order.
func LoadSnapshotsCSV(path string) ([]types.YieldSnapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open yield history: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Join(ErrMissingHeader, err)
	}
	if len(header) < 2 || strings.ToLower(strings.TrimSpace(header[0])) != "timestamp" {
		return nil, errors.Join(ErrMissingHeader,
			fmt.Errorf("expected 'timestamp' plus at least one asset column, got %v", header))
	}

	assetIDs := make([]types.AssetID, len(header)-1)
	for i, name := range header[1:] {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Join(ErrMissingHeader, fmt.Errorf("asset column %d has an empty name", i+1))
		}
		assetIDs[i] = types.AssetID(name)
	}

	var snapshots []types.YieldSnapshot
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", row, len(record), len(header))
		}

		timestamp, err := parseTimestamp(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		yields := make(map[types.AssetID]int64, len(assetIDs))
		for i, field := range record[1:] {
			yieldBP, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid yield %q for asset %s: %w", row, field, assetIDs[i], err)
			}
			yields[assetIDs[i]] = yieldBP
		}

		snapshots = append(snapshots, types.YieldSnapshot{Timestamp: timestamp, Yields: yields})
	}

	if len(snapshots) == 0 {
		return nil, ErrEmptyFile
	}

	dataLogger.Info().
		Str("path", path).
		Int("snapshots", len(snapshots)).
		Int("assets", len(assetIDs)).
		Msg("Loaded yield history")

	return snapshots, nil
}

func parseTimestamp(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, field); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", field)
}
