package autosave

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"coursehub/backend/internal/model"
)

// Beacon delivers the last unsaved content when an editing session ends.
// Send returns immediately. Delivery is best effort: there is no retry and no
// confirmation, and a lost beacon loses the unsaved edits.
type Beacon interface {
	Send(payload model.BeaconPayload)
}

// BackgroundBeacon is a Beacon that delivers on its own goroutines. Wait
// blocks until every send started so far has finished or ctx is done.
type BackgroundBeacon interface {
	Beacon
	Wait(ctx context.Context) error
}

const beaconTimeout = 5 * time.Second

// inflight tracks background sends.
type inflight struct {
	wg sync.WaitGroup
}

func (f *inflight) run(fn func()) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		fn()
	}()
}

func (f *inflight) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTTPBeacon POSTs the payload as JSON to a beacon receiver.
type HTTPBeacon struct {
	inflight
	client *http.Client
	url    string
	logger *slog.Logger
}

func NewHTTPBeacon(url string, client *http.Client, logger *slog.Logger) *HTTPBeacon {
	if client == nil {
		client = &http.Client{Timeout: beaconTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPBeacon{client: client, url: url, logger: logger}
}

func (b *HTTPBeacon) Send(payload model.BeaconPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		b.logger.Debug("Beacon payload could not be encoded.", "error", err)
		return
	}
	b.run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
		if err != nil {
			b.logger.Debug("Beacon request could not be built.", "error", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := b.client.Do(req)
		if err != nil {
			b.logger.Debug("Beacon was not delivered.", "student_id", payload.StudentID, "task_key", payload.TaskKey, "error", err)
			return
		}
		resp.Body.Close()
	})
}

// StoreBeacon writes the payload straight to the draft store in the background.
// Call Wait before closing the store.
type StoreBeacon struct {
	inflight
	store  Store
	logger *slog.Logger
}

func NewStoreBeacon(store Store, logger *slog.Logger) *StoreBeacon {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreBeacon{store: store, logger: logger}
}

func (b *StoreBeacon) Send(payload model.BeaconPayload) {
	b.run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
		defer cancel()

		draft := &model.Draft{StudentID: payload.StudentID, TaskKey: payload.TaskKey, Version: payload.Version, Content: payload.Content}
		if _, err := Persist(ctx, b.store, draft); err != nil {
			b.logger.Debug("Beacon save failed.", "student_id", payload.StudentID, "task_key", payload.TaskKey, "version", payload.Version, "error", err)
		}
	})
}
