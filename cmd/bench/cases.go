// README: Bench cases covering infrastructure, migrations, the approval workflow and an approval race.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
			defer db.Close()
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
		defer func() { _ = r.redis.Close() }()
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{Name: "Env: Postgres connect", Run: pingDB},
		{Name: "Env: Redis connect", Run: pingRedis},
		{Name: "Migration: apply (optional)", Run: applyMigration},
		{Name: "Migration: tables present", Run: tablesPresent},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.call(ctx, http.MethodGet, base+"/health", "", nil)
				return expect(status, latency, err, http.StatusOK)
			},
		},
		{
			Name: "API: unauthenticated request rejected",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.call(ctx, http.MethodGet, base+"/api/rides", "", nil)
				return expect(status, latency, err, http.StatusUnauthorized)
			},
		},
		{Name: "Flow: long ride needs project manager first", Run: pmGate},
		{Name: "Flow: concurrent admin approvals, one winner", Run: approvalRace},
		{Name: "Perf: list rides under load", Run: listLoad},
	}
}

func pingDB(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusFail, Note: "db not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func pingRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: StatusFail, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	return Result{Status: StatusPass}
}

func applyMigration(ctx context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: StatusSkip, Note: "use -apply-migration"}
	}
	if r.db == nil {
		return Result{Status: StatusFail, Note: "db not configured"}
	}
	b, err := os.ReadFile(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	for _, stmt := range splitSQL(string(b)) {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return Result{Status: StatusFail, Note: err.Error()}
		}
	}
	return Result{Status: StatusPass}
}

func tablesPresent(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: StatusFail, Note: "db not configured"}
	}
	tables, err := extractTables(r.cfg.MigrationPath)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+t).Scan(&exists)
		if err != nil {
			return Result{Status: StatusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: StatusFail, Note: "missing table " + t}
		}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("tables=%d", len(tables))}
}

// pmGate creates a ride above the approval threshold and checks that an admin cannot
// approve it before the project manager does.
func pmGate(ctx context.Context, r *Runner) Result {
	if r.cfg.UserToken == "" || r.cfg.AdminToken == "" || r.cfg.PMToken == "" {
		return Result{Status: StatusSkip, Note: "user, pm and admin tokens required"}
	}
	id, err := r.createRide(ctx, 120)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	url := r.cfg.BaseURL + "/api/rides/" + id + "/approve"
	status, _, _, err := r.call(ctx, http.MethodPost, url, r.cfg.AdminToken, nil)
	if err != nil || status != http.StatusConflict {
		return Result{Status: StatusFail, Note: fmt.Sprintf("admin first: status=%d err=%v", status, err)}
	}
	status, _, _, err = r.call(ctx, http.MethodPost, url, r.cfg.PMToken, nil)
	if err != nil || status != http.StatusOK {
		return Result{Status: StatusFail, Note: fmt.Sprintf("pm approve: status=%d err=%v", status, err)}
	}
	status, _, latency, err := r.call(ctx, http.MethodPost, url, r.cfg.AdminToken, nil)
	return expect(status, latency, err, http.StatusOK)
}

func approvalRace(ctx context.Context, r *Runner) Result {
	if r.cfg.UserToken == "" || r.cfg.AdminToken == "" {
		return Result{Status: StatusSkip, Note: "user and admin tokens required"}
	}
	id, err := r.createRide(ctx, 5)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	url := r.cfg.BaseURL + "/api/rides/" + id + "/approve"

	var ok, conflict, other int64
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _, _, err := r.call(ctx, http.MethodPost, url, r.cfg.AdminToken, nil)
			switch {
			case err != nil:
				atomic.AddInt64(&other, 1)
			case status == http.StatusOK:
				atomic.AddInt64(&ok, 1)
			case status == http.StatusConflict:
				atomic.AddInt64(&conflict, 1)
			default:
				atomic.AddInt64(&other, 1)
			}
		}()
	}
	wg.Wait()

	note := fmt.Sprintf("success=%d conflict=%d other=%d", ok, conflict, other)
	if ok == 1 && other == 0 {
		return Result{Status: StatusPass, Note: note}
	}
	return Result{Status: StatusFail, Note: note}
}

func listLoad(ctx context.Context, r *Runner) Result {
	if r.cfg.AdminToken == "" {
		return Result{Status: StatusSkip, Note: "admin token required"}
	}
	url := r.cfg.BaseURL + "/api/rides"
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, _, err := r.call(ctx, http.MethodGet, url, r.cfg.AdminToken, nil)
				if err != nil || status != http.StatusOK {
					atomic.AddInt64(&errCount, 1)
					continue
				}
				atomic.AddInt64(&count, 1)
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func (r *Runner) createRide(ctx context.Context, distanceKm float64) (string, error) {
	body := map[string]any{
		"startLocation": map[string]any{"lat": 6.9271, "lng": 79.8612, "address": "Colombo Fort"},
		"endLocation":   map[string]any{"lat": 7.2906, "lng": 80.6337, "address": "Kandy"},
		"distanceKm":    distanceKm,
	}
	status, resp, _, err := r.call(ctx, http.MethodPost, r.cfg.BaseURL+"/api/rides", r.cfg.UserToken, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("create ride: status=%d body=%s", status, resp)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp, &created); err != nil {
		return "", fmt.Errorf("decode created ride: %w", err)
	}
	return created.ID, nil
}

func (r *Runner) call(ctx context.Context, method, url, token string, body any) (int, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	return resp.StatusCode, payload, time.Since(start), err
}

func expect(status int, latency time.Duration, err error, want int) Result {
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	res := Result{Latency: latency, Note: fmt.Sprintf("status=%d", status)}
	if status == want {
		res.Status = StatusPass
	} else {
		res.Status = StatusFail
	}
	return res
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
