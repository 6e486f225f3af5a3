// simulate drives concurrent auto-schedule traffic against a running
// api-server to observe booking throughput and the spread of doctor
// assignments under load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medviet/clinic-booking/internal/db"
)

var symptoms = []string{
	"đau tim dữ dội",
	"huyết áp cao nhiều ngày",
	"đau lưng khi ngồi lâu",
	"đau khớp gối",
	"viêm họng, nghẹt mũi",
	"ngứa da nổi mẩn",
	"đau răng khi nhai",
	"mệt mỏi không rõ nguyên nhân",
}

var windows = []string{
	"08:00 - 08:30",
	"09:00 - 09:30",
	"14:30 - 15:00",
	"anytime in the morning", // exercises the 08:00 default
}

type SimConfig struct {
	APIBaseURL string
	Duration   time.Duration
	Workers    int
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status >= 400 && status < 500:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]

	p50Idx := len(latencies) * 50 / 100
	if p50Idx >= len(latencies) {
		p50Idx = len(latencies) - 1
	}
	p50 = latencies[p50Idx]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, min, max, p50, p95
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	sim := SimConfig{
		APIBaseURL: getEnv("SIM_API_BASE_URL", "http://127.0.0.1:8080"),
		Duration:   getDurationEnv("SIM_DURATION", time.Minute),
		Workers:    getIntEnv("SIM_WORKERS", 10),
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, dsn)
	cancel()
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	usernames, err := loadPatientUsernames(context.Background(), pool)
	if err != nil {
		log.Fatalf("load patient usernames: %v", err)
	}
	if len(usernames) == 0 {
		log.Fatal("no PATIENT users found, run cmd/seed first")
	}
	log.Printf("simulating with %d patient users, %d workers, duration %s",
		len(usernames), sim.Workers, sim.Duration)

	client := &http.Client{Timeout: 15 * time.Second}

	tokens := make([]string, 0, len(usernames))
	for _, username := range usernames {
		token, err := login(client, sim.APIBaseURL, username, "patient123")
		if err != nil {
			log.Printf("login %s failed: %v", username, err)
			continue
		}
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		log.Fatal("no logins succeeded")
	}

	metrics := &OperationMetrics{}
	deadline := time.Now().Add(sim.Duration)

	var wg sync.WaitGroup
	for w := 0; w < sim.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				token := tokens[rand.Intn(len(tokens))]
				start := time.Now()
				status := autoSchedule(client, sim.APIBaseURL, token)
				metrics.Record(time.Since(start), status)
			}
		}()
	}
	wg.Wait()

	avg, min, max, p50, p95 := metrics.Stats()
	fmt.Printf("auto-schedule: total=%d success=%d rejected=%d error=%d\n",
		metrics.Total, metrics.Success, metrics.Rejected, metrics.Error)
	fmt.Printf("latency: avg=%s min=%s max=%s p50=%s p95=%s\n", avg, min, max, p50, p95)
}

func loadPatientUsernames(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, `
		SELECT username
		FROM users
		WHERE role = 'PATIENT' AND enabled
		LIMIT 50
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		usernames = append(usernames, u)
	}

	return usernames, rows.Err()
}

func login(client *http.Client, baseURL, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	resp, err := client.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login status %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func autoSchedule(client *http.Client, baseURL, token string) int {
	payload := map[string]any{
		"patient": map[string]string{
			"fullName": "Sim Patient",
			"gender":   "M",
		},
		"symptom":         symptoms[rand.Intn(len(symptoms))],
		"preferredDate":   time.Now().AddDate(0, 0, 1+rand.Intn(14)).Format("2006-01-02"),
		"preferredWindow": windows[rand.Intn(len(windows))],
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, baseURL+"/appointments/auto-schedule", bytes.NewReader(body))
	if err != nil {
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()

	return resp.StatusCode
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
