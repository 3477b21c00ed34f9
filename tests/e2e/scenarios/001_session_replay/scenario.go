package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// ### Start - fixed configs (no change)
// These values define deterministic test data generation and must match expected results.
const (
	totalSessions    = 400 // Number of distinct transactions
	eventsPerSession = 12  // Events per transaction, one second apart
	baseEpoch        = 1766944980
)

var statuses = []string{"ok", "retry", "ok", "error"}

// ### End - fixed configs

type batchToSend struct {
	worker     int
	batchIndex int
	jsonData   []byte
	isReplay   bool
}

// main runs the e2e scenario: 001_session_replay
//
// The scenario folds events of many sessions into transactions through
// POST /collections/{collection}/transactions, replaying a share of the batches, and then reads
// the transactions back with a test mode export.
//
// What it tests:
//   - Event ingestion and merge into stored transactions across many runs
//   - Replayed batches do not change any transaction (fingerprint dedup)
//   - start_time, duration and event_count of every transaction
//   - status accumulation into a dedup list
//
// Sessions are split over the workers so that two concurrent requests never touch the same
// transaction; separate requests for one id are last-write-wins by design.
//
// Expected results:
//   - every request answers 200
//   - 400 transactions, each with event_count 12, duration 11 and status ["error","ok","retry"]
func main() {
	// these configs can be changed to run the scenario
	baseURL := getEnv("BASE_URL", "http://localhost:8080")
	collection := getEnv("COLLECTION", "web_txn")
	eventsPerBatch := getEnvInt("EVENTS_PER_BATCH", 4) // Each session's events are cut into batches of this size
	parallel := getEnvInt("PARALLEL", 4)
	replayEvery := getEnvInt("REPLAY_EVERY", 3) // Every n-th batch is sent twice
	sessionsPerBatch := getEnvInt("SESSIONS_PER_BATCH", 5)

	if eventsPerSession%eventsPerBatch != 0 || totalSessions%sessionsPerBatch != 0 {
		fmt.Fprintf(os.Stderr, "ERROR: EVENTS_PER_BATCH must divide %d and SESSIONS_PER_BATCH must divide %d\n", eventsPerSession, totalSessions)
		os.Exit(1)
	}

	fmt.Println("Starting e2e scenario: 001_session_replay")
	fmt.Printf("BASE_URL: %s\n", baseURL)
	fmt.Printf("COLLECTION: %s\n", collection)
	fmt.Printf("EVENTS_PER_BATCH: %d\n", eventsPerBatch)
	fmt.Printf("SESSIONS_PER_BATCH: %d\n", sessionsPerBatch)
	fmt.Printf("PARALLEL: %d\n", parallel)
	fmt.Printf("REPLAY_EVERY: %d\n", replayEvery)
	fmt.Println()

	batches, err := generateBatches(eventsPerBatch, sessionsPerBatch, parallel, replayEvery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to generate batches: %v\n", err)
		os.Exit(1)
	}

	perWorker := make([][]batchToSend, parallel)
	for _, b := range batches {
		perWorker[b.worker] = append(perWorker[b.worker], b)
	}

	var wg sync.WaitGroup
	var sent, replayed, failed int64
	for w := range perWorker {
		wg.Add(1)
		go func(batches []batchToSend) {
			defer wg.Done()
			for _, b := range batches {
				if err := postJSON(baseURL+"/collections/"+collection+"/transactions?transaction_id=session_id&accumulate=status&dedupe=true", b.jsonData, nil); err != nil {
					atomic.AddInt64(&failed, 1)
					fmt.Fprintf(os.Stderr, "ERROR: Batch %d (worker %d, replay %t) failed: %v\n", b.batchIndex, b.worker, b.isReplay, err)
					continue
				}
				atomic.AddInt64(&sent, 1)
				if b.isReplay {
					atomic.AddInt64(&replayed, 1)
				}
			}
		}(perWorker[w])
	}
	wg.Wait()

	fmt.Println("=== Statistics ===")
	fmt.Printf("Batches sent: %d\n", atomic.LoadInt64(&sent))
	fmt.Printf("Replayed batches: %d\n", atomic.LoadInt64(&replayed))
	fmt.Printf("Failed batches: %d\n", atomic.LoadInt64(&failed))
	if failed > 0 {
		os.Exit(1)
	}

	var export struct {
		Matched      int              `json:"matched"`
		Transactions []map[string]any `json:"transactions"`
	}
	if err := postJSON(baseURL+"/collections/"+collection+"/export", []byte(`{"action":"copy","testmode":true}`), &export); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Export failed: %v\n", err)
		os.Exit(1)
	}

	if problems := verify(export.Transactions); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "MISMATCH: %s\n", p)
		}
		os.Exit(1)
	}
	fmt.Printf("Verified %d transactions\n", export.Matched)
	fmt.Println("Scenario completed successfully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func sessionID(s int) string { return fmt.Sprintf("s-%04d", s) }

func event(s, i int) map[string]string {
	return map[string]string{
		"_time":      strconv.Itoa(baseEpoch + s + i),
		"session_id": sessionID(s),
		"status":     statuses[i%len(statuses)],
		"path":       fmt.Sprintf("/step/%d", i),
	}
}

// generateBatches cuts the events of each group of sessions into batches. Later parts of a session
// are emitted before earlier ones so that merges see out of order events.
func generateBatches(eventsPerBatch, sessionsPerBatch, parallel, replayEvery int) ([]batchToSend, error) {
	var batches []batchToSend
	index := 0
	for group := 0; group < totalSessions/sessionsPerBatch; group++ {
		for part := eventsPerSession/eventsPerBatch - 1; part >= 0; part-- {
			events := make([]map[string]string, 0, eventsPerBatch*sessionsPerBatch)
			for s := group * sessionsPerBatch; s < (group+1)*sessionsPerBatch; s++ {
				for i := part * eventsPerBatch; i < (part+1)*eventsPerBatch; i++ {
					events = append(events, event(s, i))
				}
			}
			data, err := json.Marshal(events)
			if err != nil {
				return nil, err
			}
			index++
			b := batchToSend{worker: group % parallel, batchIndex: index, jsonData: data}
			batches = append(batches, b)
			if index%replayEvery == 0 {
				b.isReplay = true
				batches = append(batches, b)
			}
		}
	}
	return batches, nil
}

func verify(transactions []map[string]any) []string {
	var problems []string
	if len(transactions) != totalSessions {
		problems = append(problems, fmt.Sprintf("expected %d transactions, got %d", totalSessions, len(transactions)))
	}
	for _, txn := range transactions {
		id, _ := txn["session_id"].(string)
		var s int
		if _, err := fmt.Sscanf(id, "s-%04d", &s); err != nil {
			problems = append(problems, fmt.Sprintf("unexpected session id %q", id))
			continue
		}
		want := map[string]string{
			"start_time":  strconv.Itoa(baseEpoch + s),
			"duration":    strconv.Itoa(eventsPerSession - 1),
			"event_count": strconv.Itoa(eventsPerSession),
			"status":      `["error","ok","retry"]`,
			"path":        fmt.Sprintf("/step/%d", eventsPerSession-1),
		}
		for field, expected := range want {
			got := fmt.Sprint(txn[field])
			if b, err := json.Marshal(txn[field]); err == nil && field == "status" {
				got = string(b)
			}
			if got != expected {
				problems = append(problems, fmt.Sprintf("%s: %s = %s, want %s", id, field, got, expected))
			}
		}
	}
	return problems
}

func postJSON(url string, body []byte, out any) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, data)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}
