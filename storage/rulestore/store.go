// Package rulestore implements the authoritative rule store over MySQL.
package rulestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/pkg/retry"
	"github.com/c360/vitalstream/types/vital"
)

// Config holds MySQL connection settings.
type Config struct {
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	QueryTimeout    time.Duration `json:"query_timeout"`
}

// DefaultConfig returns connection pool defaults. The DSN has no
// default; it must come from configuration.
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		QueryTimeout:    3 * time.Second,
	}
}

const queryActiveRules = `
SELECT id, customer_id, rule_category, physical_sign,
       threshold_min, threshold_max,
       trend_duration, time_window_seconds, cooldown_seconds,
       priority_level, severity_level, alert_message,
       enabled_channels, effective_time_start, effective_time_end,
       effective_weekdays, condition_expression
FROM alert_rules
WHERE customer_id = ? AND enabled = 1 AND deleted = 0
ORDER BY priority_level ASC, id ASC`

// Store is a MySQL-backed rule store. Query returns only enabled,
// not-deleted rules ordered by priority ascending, which downstream
// compilation relies on.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
}

// New opens the connection pool and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Store", "New",
			"mysql dsn is required")
	}
	def := DefaultConfig()
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = def.MaxOpenConns
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = def.MaxIdleConns
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = def.ConnMaxLifetime
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = def.QueryTimeout
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, errors.WrapFatal(err, "Store", "New", "open mysql pool")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.WrapTransient(err, "Store", "New", "mysql ping")
	}

	return &Store{
		db:      db,
		timeout: cfg.QueryTimeout,
		logger:  slog.Default().With("component", "rule-store"),
	}, nil
}

// Query fetches the active rule definitions for one customer. Transient
// connection errors retry briefly before surfacing.
func (s *Store) Query(ctx context.Context, customerID string) ([]vital.RuleDefinition, error) {
	if customerID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Store", "Query",
			"customer id is required")
	}

	return retry.DoWithResult(ctx, retry.Quick(), func() ([]vital.RuleDefinition, error) {
		queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		defs, err := s.queryOnce(queryCtx, customerID)
		if err != nil {
			return nil, errors.WrapTransient(err, "Store", "Query", "rule query")
		}
		return defs, nil
	})
}

func (s *Store) queryOnce(ctx context.Context, customerID string) ([]vital.RuleDefinition, error) {
	rows, err := s.db.QueryContext(ctx, queryActiveRules, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []vital.RuleDefinition
	for rows.Next() {
		def, err := s.scanRule(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}

func (s *Store) scanRule(rows *sql.Rows) (vital.RuleDefinition, error) {
	var (
		def          vital.RuleDefinition
		category     sql.NullString
		sign         sql.NullString
		minThreshold sql.NullFloat64
		maxThreshold sql.NullFloat64
		trend        sql.NullInt64
		window       sql.NullInt64
		cooldown     sql.NullInt64
		priority     sql.NullInt64
		severity     sql.NullString
		message      sql.NullString
		channels     sql.NullString
		timeStart    sql.NullString
		timeEnd      sql.NullString
		weekdays     sql.NullString
		expression   sql.NullString
	)

	err := rows.Scan(&def.ID, &def.CustomerID, &category, &sign,
		&minThreshold, &maxThreshold,
		&trend, &window, &cooldown,
		&priority, &severity, &message,
		&channels, &timeStart, &timeEnd,
		&weekdays, &expression)
	if err != nil {
		return def, err
	}

	def.Category = category.String
	def.PhysicalSign = sign.String
	if minThreshold.Valid {
		v := minThreshold.Float64
		def.ThresholdMin = &v
	}
	if maxThreshold.Valid {
		v := maxThreshold.Float64
		def.ThresholdMax = &v
	}
	def.TrendDuration = int(trend.Int64)
	def.TimeWindowSeconds = int(window.Int64)
	def.CooldownSeconds = int(cooldown.Int64)
	def.PriorityLevel = int(priority.Int64)
	def.SeverityLevel = severity.String
	def.AlertMessage = message.String
	def.EffectiveTimeStart = timeStart.String
	def.EffectiveTimeEnd = timeEnd.String
	def.ConditionExpression = expression.String
	// The query already filtered on these flags.
	def.Enabled = true
	def.Deleted = false

	def.EnabledChannels = s.decodeStringList(def.ID, "enabled_channels", channels)
	def.EffectiveWeekdays = s.decodeIntList(def.ID, "effective_weekdays", weekdays)
	return def, nil
}

// decodeStringList parses a JSON array column. A malformed value is
// logged and treated as unset so compilation defaults apply.
func (s *Store) decodeStringList(ruleID int64, column string, raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw.String), &list); err != nil {
		s.logger.Warn("malformed list column", "rule_id", ruleID, "column", column, "error", err)
		return nil
	}
	return list
}

func (s *Store) decodeIntList(ruleID int64, column string, raw sql.NullString) []int {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var list []int
	if err := json.Unmarshal([]byte(raw.String), &list); err != nil {
		s.logger.Warn("malformed list column", "rule_id", ruleID, "column", column, "error", err)
		return nil
	}
	return list
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
