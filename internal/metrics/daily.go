package metrics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tokenforge/sage/internal/model"
)

// DayOf formats a time as the rollup day key.
func DayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Daily aggregates learning activity into one row per calendar day. The
// server and the worker each run their own Daily over the same directory;
// a writer only ever touches its own per-day file, and reads sum every
// writer's rows, so the served row carries both processes' counters without
// a read-modify-write over shared state.
type Daily struct {
	mu     sync.Mutex
	dir    string
	writer string
	days   map[string]*model.LearningMetricsDaily
}

// NewDaily creates an aggregator persisting per-day rows under dir. An
// empty dir keeps everything in-memory.
func NewDaily(dir string) (*Daily, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating metrics dir: %w", err)
		}
	}
	return &Daily{
		dir:    dir,
		writer: uuid.NewString()[:8],
		days:   make(map[string]*model.LearningMetricsDaily),
	}, nil
}

func (d *Daily) row(day string) *model.LearningMetricsDaily {
	r, ok := d.days[day]
	if !ok {
		r = &model.LearningMetricsDaily{Day: day}
		d.days[day] = r
	}
	return r
}

func (d *Daily) bump(day string, f func(*model.LearningMetricsDaily)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.row(day)
	f(r)
	d.persist(r)
}

// persist writes this writer's row for one day. Failures degrade to an
// in-memory-only row.
func (d *Daily) persist(r *model.LearningMetricsDaily) {
	if d.dir == "" {
		return
	}
	data, err := yaml.Marshal(r)
	if err == nil {
		name := fmt.Sprintf("day-%s.%s.yaml", r.Day, d.writer)
		err = os.WriteFile(filepath.Join(d.dir, name), data, 0o644)
	}
	if err != nil {
		slog.Warn("metrics: failed to persist daily row", "day", r.Day, "err", err)
	}
}

// AddInteraction counts one answered question on the given day.
func (d *Daily) AddInteraction(day string) {
	d.bump(day, func(r *model.LearningMetricsDaily) { r.Interactions++ })
}

// AddRating counts one rating on the given day.
func (d *Daily) AddRating(day string, positive bool) {
	d.bump(day, func(r *model.LearningMetricsDaily) {
		if positive {
			r.PositiveRatings++
		} else {
			r.NegativeRatings++
		}
	})
}

// AddGap counts one identified knowledge gap.
func (d *Daily) AddGap(day string) {
	d.bump(day, func(r *model.LearningMetricsDaily) { r.GapsIdentified++ })
}

// AddEntryCreated counts one created knowledge entry.
func (d *Daily) AddEntryCreated(day string) {
	d.bump(day, func(r *model.LearningMetricsDaily) { r.EntriesCreated++ })
}

// AddEntryUpdated counts one updated knowledge entry.
func (d *Daily) AddEntryUpdated(day string) {
	d.bump(day, func(r *model.LearningMetricsDaily) { r.EntriesUpdated++ })
}

// Day returns one day's row summed across every writer; the zero row when
// the day is empty.
func (d *Daily) Day(day string) model.LearningMetricsDaily {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := model.LearningMetricsDaily{Day: day}
	if r, ok := d.days[day]; ok {
		out = *r
	}
	for _, r := range d.otherWriters() {
		if r.Day == day {
			addCounters(&out, r)
		}
	}
	return out
}

// All returns every day's rollup summed across every writer, oldest first.
func (d *Daily) All() []model.LearningMetricsDaily {
	d.mu.Lock()
	defer d.mu.Unlock()
	byDay := make(map[string]*model.LearningMetricsDaily, len(d.days))
	for day, r := range d.days {
		row := *r
		byDay[day] = &row
	}
	for _, r := range d.otherWriters() {
		agg, ok := byDay[r.Day]
		if !ok {
			agg = &model.LearningMetricsDaily{Day: r.Day}
			byDay[r.Day] = agg
		}
		addCounters(agg, r)
	}
	out := make([]model.LearningMetricsDaily, 0, len(byDay))
	for _, r := range byDay {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// otherWriters loads the rows persisted by writers other than this one. Our
// own rows are authoritative in memory and already on disk.
func (d *Daily) otherWriters() []model.LearningMetricsDaily {
	if d.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		slog.Warn("metrics: failed to scan metrics dir", "err", err)
		return nil
	}
	var out []model.LearningMetricsDaily
	own := "." + d.writer + ".yaml"
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "day-") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		if strings.HasSuffix(name, own) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(d.dir, name))
		if err != nil {
			slog.Warn("metrics: failed to read daily row", "file", name, "err", err)
			continue
		}
		var r model.LearningMetricsDaily
		if err := yaml.Unmarshal(data, &r); err != nil || r.Day == "" {
			slog.Warn("metrics: skipping malformed daily row", "file", name, "err", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func addCounters(dst *model.LearningMetricsDaily, src model.LearningMetricsDaily) {
	dst.Interactions += src.Interactions
	dst.PositiveRatings += src.PositiveRatings
	dst.NegativeRatings += src.NegativeRatings
	dst.GapsIdentified += src.GapsIdentified
	dst.EntriesCreated += src.EntriesCreated
	dst.EntriesUpdated += src.EntriesUpdated
}
