package edgar

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seenimoa/edgarwatch/pkg/models"
	"github.com/seenimoa/edgarwatch/pkg/utils"
)

const directoryCacheKey = "directory"

// Directory returns the EDGAR company directory in upstream row order,
// followed by any rows from the security identifier file. The result is
// cached for the configured directory TTL.
func (c *Client) Directory(ctx context.Context) ([]models.CIKMapping, error) {
	if cached, ok := c.cache.Get(directoryCacheKey); ok {
		return cached.([]models.CIKMapping), nil
	}

	var raw map[string]tickerEntry
	if err := c.getJSON(ctx, c.opts.DataURL+"/files/company_tickers.json", &raw); err != nil {
		return nil, fmt.Errorf("edgar directory: %w", err)
	}
	rows := orderTickers(raw)

	if c.opts.SecurityIDsFile != "" {
		extra, err := LoadSecurityIDs(c.opts.SecurityIDsFile)
		if err != nil {
			return nil, err
		}
		rows = mergeSecurityIDs(rows, extra)
	}

	c.cache.Set(directoryCacheKey, rows)
	return rows, nil
}

// orderTickers flattens the row-number keyed object, ordering rows by
// numeric key so "10" follows "9".
func orderTickers(raw map[string]tickerEntry) []models.CIKMapping {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return keys[i] < keys[j]
	})

	rows := make([]models.CIKMapping, 0, len(keys))
	for _, k := range keys {
		e := raw[k]
		rows = append(rows, models.CIKMapping{
			CIK:    utils.PadCIK(e.CIK.String()),
			Symbol: e.Ticker,
			Name:   e.Title,
		})
	}
	return rows
}

// LoadSecurityIDs reads a YAML file of security identifiers:
//
//	securities:
//	  - cusip: "037833100"
//	    cik: "320193"
//	    name: Apple Inc.
func LoadSecurityIDs(path string) ([]models.CIKMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read security ids %s: %w", path, err)
	}
	var f securityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse security ids %s: %w", path, err)
	}

	rows := make([]models.CIKMapping, 0, len(f.Securities))
	for i, s := range f.Securities {
		cik := strings.TrimSpace(s.CIK)
		cusip := strings.TrimSpace(s.CUSIP)
		if !utils.IsDigits(cik) || cusip == "" {
			return nil, fmt.Errorf("security ids %s: entry %d needs a numeric cik and a cusip", path, i)
		}
		rows = append(rows, models.CIKMapping{
			CIK:        utils.PadCIK(cik),
			Symbol:     s.Ticker,
			Name:       s.Name,
			SecurityID: strings.ToUpper(cusip),
		})
	}
	return rows, nil
}

// mergeSecurityIDs attaches each security identifier to the first directory
// row with the same CIK that has none yet, and appends the rest.
func mergeSecurityIDs(rows, extra []models.CIKMapping) []models.CIKMapping {
	byCIK := make(map[string]int, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		byCIK[rows[i].CIK] = i
	}
	for _, e := range extra {
		if i, ok := byCIK[e.CIK]; ok && rows[i].SecurityID == "" {
			rows[i].SecurityID = e.SecurityID
			continue
		}
		rows = append(rows, e)
	}
	return rows
}
