package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scorekeep/scorekeep/pkg/logger"
)

// httpClient wraps http.Client with a fixed timeout and context-aware
// helpers.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *httpClient) post(ctx context.Context, url string, in, out any) (int, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s: %w", url, err)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", url, err)
		}
	}
	return resp.StatusCode, nil
}

// submitEvents posts the generated events in batches across a worker
// pool. Rejections are expected for intentionally conflicting traffic
// and are counted, not treated as failures.
func submitEvents(ctx context.Context, config *Config, client *httpClient, events []wireEvent, stats *Stats) error {
	url := config.BaseURL + "/events"

	batches := make(chan []wireEvent, config.Workers*2)
	var (
		submitted int64
		applied   int64
		rejected  int64
		failed    int64
	)

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				select {
				case <-ctx.Done():
					return
				default:
				}
				var ack submitAck
				status, err := client.post(ctx, url, batch, &ack)
				if err != nil || status != http.StatusOK {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&submitted, int64(ack.Submitted))
				atomic.AddInt64(&applied, int64(ack.Applied))
				atomic.AddInt64(&rejected, int64(len(ack.Rejected)))
				if config.Verbose {
					for _, rej := range ack.Rejected {
						logger.Get().Debug(ctx, "event rejected",
							logger.String("event_id", rej.EventID),
							logger.String("reason", rej.Reason))
					}
				}
			}
		}()
	}

	go func() {
		defer close(batches)
		for start := 0; start < len(events); start += config.BatchSize {
			end := start + config.BatchSize
			if end > len(events) {
				end = len(events)
			}
			select {
			case <-ctx.Done():
				return
			case batches <- events[start:end]:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsApplied = int(atomic.LoadInt64(&applied))
	stats.EventsRejected = int(atomic.LoadInt64(&rejected))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "event submission completed",
		logger.Int("submitted", stats.EventsSubmitted),
		logger.Int("applied", stats.EventsApplied),
		logger.Int("rejected", stats.EventsRejected),
		logger.Int("failedBatches", stats.BatchesFailed))
	return nil
}
