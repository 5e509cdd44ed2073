package sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/typedsql/dialect"
)

// StatementKind classifies a statement by its leading keyword.
type StatementKind int

// Statement kinds.
const (
	OtherStatement StatementKind = iota
	SelectStatement
	InsertStatement
	UpdateStatement
	DeleteStatement
	numStatementKinds
)

var kindNames = [...]string{"other", "select", "insert", "update", "delete"}

func (k StatementKind) String() string {
	if k < 0 || k >= numStatementKinds {
		return fmt.Sprintf("StatementKind(%d)", int(k))
	}
	return kindNames[k]
}

// KindOf returns the kind of the statement query. Statements starting with
// WITH are counted as selects.
func KindOf(query string) StatementKind {
	kw, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	switch strings.ToUpper(kw) {
	case "SELECT", "WITH":
		return SelectStatement
	case "INSERT":
		return InsertStatement
	case "UPDATE":
		return UpdateStatement
	case "DELETE":
		return DeleteStatement
	}
	return OtherStatement
}

// KindStats holds the counters of one statement kind.
type KindStats struct {
	Count    int64
	Errors   int64
	Slow     int64
	Duration time.Duration
}

// Avg returns the mean duration of a statement.
func (s KindStats) Avg() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Duration / time.Duration(s.Count)
}

func (s *KindStats) add(o KindStats) {
	s.Count += o.Count
	s.Errors += o.Errors
	s.Slow += o.Slow
	s.Duration += o.Duration
}

// QueryStats collects statement statistics per kind. It is safe for
// concurrent use.
type QueryStats struct {
	mu    sync.Mutex
	kinds [numStatementKinds]KindStats
}

func (s *QueryStats) record(kind StatementKind, d time.Duration, failed, slow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := &s.kinds[kind]
	k.Count++
	k.Duration += d
	if failed {
		k.Errors++
	}
	if slow {
		k.Slow++
	}
}

// Snapshot returns a copy of the current statistics.
func (s *QueryStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsSnapshot{kinds: s.kinds}
}

// Reset sets all counters to zero.
func (s *QueryStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = [numStatementKinds]KindStats{}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	kinds [numStatementKinds]KindStats
}

// Kind returns the counters of statements of kind k.
func (s StatsSnapshot) Kind(k StatementKind) KindStats {
	if k < 0 || k >= numStatementKinds {
		return KindStats{}
	}
	return s.kinds[k]
}

// Total returns the counters of all statements.
func (s StatsSnapshot) Total() KindStats {
	var total KindStats
	for _, k := range s.kinds {
		total.add(k)
	}
	return total
}

// String returns a one-line summary, e.g.
// "total=3 errors=0 slow=0 avg=1ms select=2 insert=1".
func (s StatsSnapshot) String() string {
	total := s.Total()
	var sb strings.Builder
	fmt.Fprintf(&sb, "total=%d errors=%d slow=%d avg=%s", total.Count, total.Errors, total.Slow, total.Avg())
	for k := SelectStatement; k < numStatementKinds; k++ {
		if n := s.kinds[k].Count; n > 0 {
			fmt.Fprintf(&sb, " %s=%d", k, n)
		}
	}
	if n := s.kinds[OtherStatement].Count; n > 0 {
		fmt.Fprintf(&sb, " other=%d", n)
	}
	return sb.String()
}

// SlowQuery describes a statement that ran longer than the slow threshold.
type SlowQuery struct {
	Kind     StatementKind
	Query    string
	Args     []any
	Duration time.Duration
	Err      error
}

// SlowQueryHook is called with every slow statement.
type SlowQueryHook func(context.Context, SlowQuery)

// StatsDriver is a Driver collecting statement statistics.
type StatsDriver struct {
	*Driver
	stats *QueryStats
	slow  atomic.Int64
	hooks []SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// Defaults to 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slow.Store(int64(d))
	}
}

// WithSlowQueryHook adds a hook called with every slow statement.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.hooks = append(s.hooks, hook)
	}
}

// WithSlowQueryLogger logs slow statements to logger at warn level.
func WithSlowQueryLogger(logger *slog.Logger) StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, q SlowQuery) {
		attrs := []any{"kind", q.Kind.String(), "duration", q.Duration, "query", q.Query}
		if q.Err != nil {
			attrs = append(attrs, "error", q.Err)
		}
		logger.WarnContext(ctx, "slow statement", attrs...)
	})
}

// NewStatsDriver returns drv collecting statistics.
//
// Example:
//
//	drv := sql.NewStatsDriver(sql.OpenDB(dialect.Postgres, db),
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLogger(slog.Default()),
//	)
//	c := sqlexec.New(drv)
//	...
//	fmt.Println(drv.QueryStats().Snapshot())
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, stats: &QueryStats{}}
	s.slow.Store(int64(100 * time.Millisecond))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenWithStats opens a database with Open and collects its statistics.
func OpenWithStats(driverName, source string, opts ...StatsOption) (*StatsDriver, error) {
	drv, err := Open(driverName, source)
	if err != nil {
		return nil, err
	}
	return NewStatsDriver(drv, opts...), nil
}

// QueryStats returns the statistics collected by d.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the current slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	return time.Duration(d.slow.Load())
}

// SetSlowThreshold changes the slow statement threshold.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.slow.Store(int64(threshold))
}

// Query implements dialect.Driver.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.observe(ctx, query, args, time.Since(start), err)
	return err
}

// Exec implements dialect.Driver.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.observe(ctx, query, args, time.Since(start), err)
	return err
}

func (d *StatsDriver) observe(ctx context.Context, query string, args any, elapsed time.Duration, err error) {
	kind := KindOf(query)
	slow := elapsed > d.SlowThreshold()
	d.stats.record(kind, elapsed, err != nil, slow)
	if !slow {
		return
	}
	q := SlowQuery{Kind: kind, Query: query, Duration: elapsed, Err: err}
	q.Args, _ = args.([]any)
	for _, hook := range d.hooks {
		hook(ctx, q)
	}
}

// Tx starts a transaction whose statements are counted too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &statsTx{Tx: tx, drv: d}, nil
}

type statsTx struct {
	dialect.Tx
	drv *StatsDriver
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.drv.observe(ctx, query, args, time.Since(start), err)
	return err
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.drv.observe(ctx, query, args, time.Since(start), err)
	return err
}

// DebugDriver is a Driver logging every statement with its placeholders
// and arguments. TraceSQL logs statements with their values inlined.
type DebugDriver struct {
	*Driver
	logger *slog.Logger
	level  slog.Level
	txs    atomic.Int64
}

// DebugOption configures a DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger of the driver. Defaults to slog.Default().
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return func(d *DebugDriver) {
		d.logger = logger
	}
}

// DebugWithLevel sets the level statements are logged at. Defaults to
// slog.LevelDebug.
func DebugWithLevel(level slog.Level) DebugOption {
	return func(d *DebugDriver) {
		d.level = level
	}
}

// NewDebugDriver returns drv logging its statements.
func NewDebugDriver(drv *Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{Driver: drv, logger: slog.Default(), level: slog.LevelDebug}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DebugDriver) log(ctx context.Context, msg string, attrs ...any) {
	d.logger.Log(ctx, d.level, msg, attrs...)
}

// Query implements dialect.Driver.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log(ctx, "query", "sql", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements dialect.Driver.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log(ctx, "exec", "sql", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction. Its statements are logged with a "tx" attribute
// numbering the transactions of the driver.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	id := d.txs.Add(1)
	d.log(ctx, "begin", "tx", id)
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		d.log(ctx, "begin failed", "tx", id, "error", err)
		return nil, err
	}
	return &debugTx{Tx: tx, drv: d, id: id}, nil
}

type debugTx struct {
	dialect.Tx
	drv *DebugDriver
	id  int64
}

func (tx *debugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.drv.log(ctx, "query", "tx", tx.id, "sql", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

func (tx *debugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.drv.log(ctx, "exec", "tx", tx.id, "sql", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

func (tx *debugTx) Commit() error {
	tx.drv.log(context.Background(), "commit", "tx", tx.id)
	return tx.Tx.Commit()
}

func (tx *debugTx) Rollback() error {
	tx.drv.log(context.Background(), "rollback", "tx", tx.id)
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*statsTx)(nil)
	_ dialect.Tx     = (*debugTx)(nil)
)
