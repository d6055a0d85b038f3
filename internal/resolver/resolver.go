// Package resolver maps watchlist identifiers (CIK, ticker, company name,
// CUSIP) to a canonical 10-digit CIK.
//
// Tickers and CUSIPs resolve by exact case-insensitive lookup, names by
// fuzzy sequence similarity over the whole reference directory. The
// directory itself is supplied by a DirectorySource; the resolver never
// fetches anything on its own.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/seenimoa/edgarwatch/internal/similarity"
	"github.com/seenimoa/edgarwatch/pkg/models"
	"github.com/seenimoa/edgarwatch/pkg/utils"
)

// NameThreshold is the similarity a name match must strictly exceed.
const NameThreshold = 0.80

var (
	ErrUnknownKind = errors.New("resolver: unknown identifier kind")
	ErrNotFound    = errors.New("resolver: identifier not found")
	ErrMalformed   = errors.New("resolver: malformed identifier")
)

// DirectorySource supplies reference rows in their upstream order.
type DirectorySource interface {
	Directory(ctx context.Context) ([]models.CIKMapping, error)
}

// StaticDirectory is a DirectorySource over a fixed slice.
type StaticDirectory []models.CIKMapping

// Directory returns the rows unchanged.
func (d StaticDirectory) Directory(context.Context) ([]models.CIKMapping, error) {
	return d, nil
}

// Match is a resolved identifier together with the directory row it hit.
type Match struct {
	CIK   string  `json:"cik"`
	Name  string  `json:"name,omitempty"`
	Score float64 `json:"score"`
}

// Resolver resolves identifiers against a reference directory.
type Resolver struct {
	source DirectorySource
}

// New creates a resolver backed by source.
func New(source DirectorySource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the canonical CIK for id.
func (r *Resolver) Resolve(ctx context.Context, id models.CompanyIdentifier) (string, error) {
	m, err := r.ResolveMatch(ctx, id)
	if err != nil {
		return "", err
	}
	return m.CIK, nil
}

// ResolveMatch is Resolve but also reports the matched row and its score.
// Exact lookups score 1.
func (r *Resolver) ResolveMatch(ctx context.Context, id models.CompanyIdentifier) (Match, error) {
	value := strings.ToUpper(strings.TrimSpace(id.Value))
	if value == "" {
		return Match{}, fmt.Errorf("%w: empty %s", ErrMalformed, id.Kind)
	}

	switch id.Kind {
	case models.KindCIK:
		cik, err := NormalizeCIK(value)
		if err != nil {
			return Match{}, err
		}
		return Match{CIK: cik, Score: 1}, nil

	case models.KindTicker:
		return r.lookup(ctx, id, func(e models.CIKMapping) bool {
			return e.Symbol != "" && strings.ToUpper(e.Symbol) == value
		})

	case models.KindSecurityID:
		// CUSIPs are alphanumeric and published upper-case; lower-case input names the same security.
		return r.lookup(ctx, id, func(e models.CIKMapping) bool {
			return e.SecurityID != "" && strings.ToUpper(e.SecurityID) == value
		})

	case models.KindName:
		entries, err := r.source.Directory(ctx)
		if err != nil {
			return Match{}, fmt.Errorf("load directory: %w", err)
		}
		best, score, ok := BestNameMatch(entries, value)
		if !ok {
			return Match{}, fmt.Errorf("%w: name %q (best score %.3f)", ErrNotFound, id.Value, score)
		}
		return Match{CIK: utils.PadCIK(best.CIK), Name: best.Name, Score: score}, nil
	}

	return Match{}, fmt.Errorf("%w: %q", ErrUnknownKind, id.Kind)
}

// lookup returns the first directory row satisfying match.
func (r *Resolver) lookup(ctx context.Context, id models.CompanyIdentifier, match func(models.CIKMapping) bool) (Match, error) {
	entries, err := r.source.Directory(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("load directory: %w", err)
	}
	for _, e := range entries {
		if match(e) {
			return Match{CIK: utils.PadCIK(e.CIK), Name: e.Name, Score: 1}, nil
		}
	}
	return Match{}, fmt.Errorf("%w: %s %q", ErrNotFound, id.Kind, id.Value)
}

// NormalizeCIK trims, upper-cases and zero-pads a raw CIK to 10 digits.
// Anything that is not all digits after padding, or wider than 10, is malformed.
func NormalizeCIK(raw string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	cik := utils.PadCIK(trimmed)
	if trimmed == "" || !utils.IsCanonicalCIK(cik) {
		return "", fmt.Errorf("%w: cik %q", ErrMalformed, raw)
	}
	return cik, nil
}

// BestNameMatch scans every row and returns the one whose upper-cased name is
// most similar to query. The first row wins ties. ok is true only when the best
// score strictly exceeds NameThreshold; the score is returned either way.
func BestNameMatch(entries []models.CIKMapping, query string) (best models.CIKMapping, score float64, ok bool) {
	q := strings.ToUpper(strings.TrimSpace(query))
	found := false
	for _, e := range entries {
		ratio := similarity.Ratio(q, strings.ToUpper(e.Name))
		if ratio > score {
			best, score, found = e, ratio, true
		}
	}
	return best, score, found && score > NameThreshold
}
