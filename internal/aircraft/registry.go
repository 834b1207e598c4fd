package aircraft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/metrics"
	"github.com/jorgecardleitao/private-jets/internal/models"
	"github.com/jorgecardleitao/private-jets/internal/storage"
	"github.com/jorgecardleitao/private-jets/internal/trace"
)

// registryDoc is one document of the registry prefix tree: entries map an
// ICAO suffix to its fields, and the reserved "children" entry lists the
// longer prefixes that carry the rest of the subtree.
type registryDoc map[string][]*string

const childrenKey = "children"

// rootFetchConcurrency bounds how many registry subtrees are walked at once.
const rootFetchConcurrency = 4

// RegistryClient fetches the current worldwide aircraft registry from the
// source's sharded prefix tree.
type RegistryClient struct {
	BaseURL string
	HTTP    *http.Client

	countries *CountryRanges
	limiter   *rate.Limiter
	retry     trace.RetryConfig
	m         *metrics.Registry
}

// NewRegistryClient builds a RegistryClient capped at requestsPerSecond
// outbound requests.
func NewRegistryClient(requestsPerSecond float64) (*RegistryClient, error) {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	countries, err := NewCountryRanges()
	if err != nil {
		return nil, err
	}
	return &RegistryClient{
		BaseURL:   trace.DefaultBaseURL,
		HTTP:      &http.Client{Timeout: 45 * time.Second},
		countries: countries,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		retry:     trace.DefaultRetryConfig(),
		m:         metrics.Default(),
	}, nil
}

// rootPrefixes are the entry points of the prefix tree, one per leading
// hex digit of an ICAO transponder number.
func rootPrefixes() []string {
	var roots []string
	for c := 'A'; c <= 'F'; c++ {
		roots = append(roots, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		roots = append(roots, string(c))
	}
	return roots
}

// Fetch walks the whole registry tree and returns every aircraft that has
// a tail number, a type designator, and a model name, sorted by ICAO
// number so repeated fetches of an unchanged registry compare equal.
func (r *RegistryClient) Fetch(ctx context.Context) ([]models.Aircraft, error) {
	roots := rootPrefixes()
	perRoot := make([][]models.Aircraft, len(roots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rootFetchConcurrency)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			rows, err := r.fetchTree(ctx, root)
			if err != nil {
				return err
			}
			perRoot[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Aircraft
	for _, rows := range perRoot {
		all = append(all, rows...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].IcaoNumber < all[j].IcaoNumber })
	return all, nil
}

// fetchTree fetches one prefix document and recurses depth-first into its
// children.
func (r *RegistryClient) fetchTree(ctx context.Context, prefix string) ([]models.Aircraft, error) {
	doc, err := r.fetchPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var rows []models.Aircraft
	var children []string
	for suffix, fields := range doc {
		if suffix == childrenKey {
			for _, child := range fields {
				if child != nil {
					children = append(children, *child)
				}
			}
			continue
		}
		if row, ok := r.row(prefix+suffix, fields); ok {
			rows = append(rows, row)
		}
	}

	sort.Strings(children)
	for _, child := range children {
		childRows, err := r.fetchTree(ctx, child)
		if err != nil {
			return nil, err
		}
		rows = append(rows, childRows...)
	}
	return rows, nil
}

func (r *RegistryClient) fetchPrefix(ctx context.Context, prefix string) (registryDoc, error) {
	attempt := 0
	return trace.Retry(ctx, r.retry, func() (registryDoc, error) {
		attempt++
		if attempt > 1 {
			r.m.FetchRetriesTotal.Inc()
		}
		return r.prefixOnce(ctx, prefix)
	})
}

func (r *RegistryClient) prefixOnce(ctx context.Context, prefix string) (registryDoc, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("awaiting rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/db-current/%s.js", r.BaseURL, prefix)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, trace.NewSourceError(constants.ErrCodeNetworkError, prefix, err)
	}
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/118.0")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")

	start := time.Now()
	resp, err := r.HTTP.Do(req)
	r.m.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		r.m.FetchesTotal.WithLabelValues("error").Inc()
		return nil, trace.NewSourceError(constants.ErrCodeNetworkError, prefix, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			r.m.FetchesTotal.WithLabelValues("error").Inc()
			return nil, trace.NewSourceError(constants.ErrCodeTruncatedPayload, prefix, err)
		}
		var doc registryDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			r.m.FetchesTotal.WithLabelValues("error").Inc()
			return nil, trace.NewSourceError(constants.ErrCodeMalformedPayload, prefix, err)
		}
		r.m.FetchesTotal.WithLabelValues("ok").Inc()
		return doc, nil
	case http.StatusTooManyRequests:
		r.m.FetchesTotal.WithLabelValues("rate_limited").Inc()
		return nil, &trace.RateLimitError{
			StatusCode: resp.StatusCode,
			RetryAfter: trace.ParseRetryAfter(resp.Header),
			Key:        prefix,
		}
	default:
		r.m.FetchesTotal.WithLabelValues("error").Inc()
		return nil, trace.NewSourceError(constants.ErrCodeBadStatus, prefix,
			fmt.Errorf("status %d", resp.StatusCode))
	}
}

// row maps a registry entry to an Aircraft. Entries with no tail number,
// type designator, or model name are dropped: they cannot be matched
// against the consumption table. Addresses outside every national block
// (including non-transponder "~" entries) keep an empty country.
func (r *RegistryClient) row(icao string, fields []*string) (models.Aircraft, bool) {
	if len(fields) < 4 || fields[0] == nil || fields[1] == nil || fields[3] == nil {
		return models.Aircraft{}, false
	}
	icao = strings.ToLower(icao)
	country, err := r.countries.Country(icao)
	if err != nil {
		country = ""
	}
	return models.Aircraft{
		IcaoNumber:     icao,
		TailNumber:     *fields[0],
		TypeDesignator: *fields[1],
		Model:          *fields[3],
		Country:        country,
	}, true
}

// SnapshotKey is the dataset key of the registry snapshot taken on date.
func SnapshotKey(date time.Time) string {
	return fmt.Sprintf("%sdate=%s/data.csv",
		constants.AircraftDatabaseRoot, date.UTC().Format("2006-01-02"))
}

// ParseSnapshotKey extracts the snapshot date from a registry dataset key.
func ParseSnapshotKey(key string) (time.Time, error) {
	raw, ok := storage.HiveParts(key)["date"]
	if !ok {
		return time.Time{}, fmt.Errorf("%s is not a registry snapshot key", key)
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date of %s: %w", key, err)
	}
	return date, nil
}

// WriteSnapshot persists rows as the registry snapshot for date. Rows are
// sorted by ICAO number so identical registries produce identical blobs.
func WriteSnapshot(ctx context.Context, store *storage.Store, date time.Time, rows []models.Aircraft) error {
	sorted := make([]models.Aircraft, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].IcaoNumber < sorted[j].IcaoNumber })

	data, err := csvutil.Marshal(sorted)
	if err != nil {
		return fmt.Errorf("encoding registry snapshot: %w", err)
	}
	return store.Put(ctx, SnapshotKey(date), data)
}

// ReadSnapshot loads the registry snapshot for date, keyed by ICAO number.
func ReadSnapshot(ctx context.Context, store *storage.Store, date time.Time) (map[string]models.Aircraft, error) {
	key := SnapshotKey(date)
	data, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var rows []models.Aircraft
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding registry snapshot %s: %w", key, err)
	}
	byIcao := make(map[string]models.Aircraft, len(rows))
	for _, row := range rows {
		byIcao[row.IcaoNumber] = row
	}
	return byIcao, nil
}

// SnapshotDates lists the dates of every stored registry snapshot,
// ascending. Keys under the registry root that are not snapshots are
// ignored.
func SnapshotDates(ctx context.Context, store *storage.Store) ([]time.Time, error) {
	keys, err := store.List(ctx, constants.AircraftDatabaseRoot)
	if err != nil {
		return nil, err
	}
	var dates []time.Time
	for _, key := range keys {
		date, err := ParseSnapshotKey(key)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}
