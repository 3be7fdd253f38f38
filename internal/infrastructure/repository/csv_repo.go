package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"market-sim-go/internal/models"
	"market-sim-go/internal/utils"
)

var snapshotHeader = []string{
	"symbol", "price", "volume", "initial_price", "change_pct",
	"high", "low", "best_bid", "best_ask", "updated_at",
}

type CsvInstrumentRepository struct {
	Dir string
}

func NewCsvInstrumentRepository(dir string) (*CsvInstrumentRepository, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	return &CsvInstrumentRepository{Dir: dir}, nil
}

func (r *CsvInstrumentRepository) path(filename string) string {
	if filepath.IsAbs(filename) || r.Dir == "" {
		return filename
	}
	return filepath.Join(r.Dir, filename)
}

// SaveAll writes one dated snapshot file and returns its path. The leading
// symbol,price,volume columns make a snapshot readable as a seed file.
func (r *CsvInstrumentRepository) SaveAll(snapshots []models.Snapshot, at time.Time) (string, error) {
	filePath := r.path(fmt.Sprintf("instruments_%s.csv", at.Format("2_01_2006_150405")))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(snapshotHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, s := range snapshots {
		high, low := s.HighLow()
		var bid, ask float64
		if l, ok := s.OrderBook.BestBid(); ok {
			bid = l.Price
		}
		if l, ok := s.OrderBook.BestAsk(); ok {
			ask = l.Price
		}
		err := writer.Write([]string{
			s.Symbol,
			f(s.Price),
			f(s.Volume),
			f(s.InitialPrice),
			f(s.ChangePct()),
			f(high),
			f(low),
			f(bid),
			f(ask),
			s.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return "", fmt.Errorf("write %s: %w", s.Symbol, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush snapshot: %w", err)
	}
	return filePath, nil
}

// ReadSeedCsv reads symbol,price[,volume] rows. A leading header row is skipped,
// lines starting with # are ignored and numbers may carry thousands
// separators ("65,000.5", "1.234.567").
func (r *CsvInstrumentRepository) ReadSeedCsv(filename string) ([]models.InstrumentSeed, error) {
	file, err := os.Open(r.path(filename))
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var seeds []models.InstrumentSeed
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed row %d: %w", row, err)
		}
		if len(record) < 2 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		price, err := utils.ParseNumber(record[1])
		if err != nil {
			if len(seeds) == 0 && strings.EqualFold(strings.TrimSpace(record[1]), "price") {
				continue
			}
			return nil, fmt.Errorf("seed row %d: %w", row, err)
		}
		seed := models.InstrumentSeed{Symbol: strings.TrimSpace(record[0]), Price: price}
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			if seed.Volume, err = utils.ParseNumber(record[2]); err != nil {
				return nil, fmt.Errorf("seed row %d: %w", row, err)
			}
		}
		seeds = append(seeds, seed)
	}
	return seeds, nil
}
