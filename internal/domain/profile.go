package domain

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

// ProfileSample is one method's accumulated call/tick counters (§6
// "get_profiling_data(domain), sort by total/average/calls").
type ProfileSample struct {
	ClassName  string
	MethodName string
	Calls      int64
	TotalTicks int64
}

func (s ProfileSample) AverageTicks() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.TotalTicks) / float64(s.Calls)
}

// ProfileStore accumulates per-method samples in memory while the domain
// runs and, when configured with a DB path, persists them to a SQLite file
// so profiling data survives process exit and can be queried with SELECT
// instead of only dumped to console (§11: "DumpToDisk persists per-method
// call/tick samples into a small SQLite file").
type ProfileStore struct {
	dbPath  string
	samples map[string]*ProfileSample
}

func newProfileStore(dbPath string) *ProfileStore {
	return &ProfileStore{dbPath: dbPath, samples: make(map[string]*ProfileSample)}
}

// Record adds one call's tick count to a method's running sample.
func (p *ProfileStore) Record(className, methodName string, ticks int64) {
	key := className + "::" + methodName
	s, ok := p.samples[key]
	if !ok {
		s = &ProfileSample{ClassName: className, MethodName: methodName}
		p.samples[key] = s
	}
	s.Calls++
	s.TotalTicks += ticks
}

// SortBy returns every recorded sample ordered by "total", "average", or
// "calls", descending.
func (p *ProfileStore) SortBy(field string) []ProfileSample {
	out := make([]ProfileSample, 0, len(p.samples))
	for _, s := range p.samples {
		out = append(out, *s)
	}
	switch field {
	case "average":
		sort.Slice(out, func(i, j int) bool { return out[i].AverageTicks() > out[j].AverageTicks() })
	case "calls":
		sort.Slice(out, func(i, j int) bool { return out[i].Calls > out[j].Calls })
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].TotalTicks > out[j].TotalTicks })
	}
	return out
}

// DumpToDisk persists every sample into the configured SQLite file,
// creating the table on first use. A no-op when no DB path was configured.
func (p *ProfileStore) DumpToDisk() error {
	if p.dbPath == "" {
		return nil
	}
	db, err := sql.Open("sqlite", p.dbPath)
	if err != nil {
		return fmt.Errorf("domain: opening profile store: %w", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS samples (
		class_name TEXT NOT NULL,
		method_name TEXT NOT NULL,
		calls INTEGER NOT NULL,
		total_ticks INTEGER NOT NULL,
		dumped_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("domain: creating profile table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("domain: beginning profile transaction: %w", err)
	}
	now := time.Now().Unix()
	stmt, err := tx.Prepare(`INSERT INTO samples (class_name, method_name, calls, total_ticks, dumped_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("domain: preparing profile insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range p.samples {
		if _, err := stmt.Exec(s.ClassName, s.MethodName, s.Calls, s.TotalTicks, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("domain: inserting profile sample: %w", err)
		}
	}
	return tx.Commit()
}
