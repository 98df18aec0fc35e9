// workers/event_import_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"fight-picks-system/models"
	"fight-picks-system/utils"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// UpcomingEvent matches the JSON shape of the MMA stats API's events feed.
type UpcomingEvent struct {
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
	Image  string    `json:"image,omitempty"`
	Fights []struct {
		FighterA string `json:"fighterA"`
		FighterB string `json:"fighterB"`
		Order    int    `json:"order"`
	} `json:"fights"`
}

// EventImportWorker polls the MMA stats API for upcoming cards and creates any
// event (with its fights) that does not exist locally yet. Existing events are
// left alone: admins own them once imported, including all result entry.
type EventImportWorker struct {
	db         *gorm.DB
	interval   time.Duration
	baseURL    string // e.g., "https://mma-stats.p.rapidapi.com"
	apiKey     string
	apiHost    string
	httpClient *http.Client
}

func NewEventImportWorker(db *gorm.DB, baseURL, apiKey, apiHost string) *EventImportWorker {
	return &EventImportWorker{
		db:         db,
		interval:   6 * time.Hour,
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiHost:    apiHost,
		httpClient: utils.HTTPClient,
	}
}

func (w *EventImportWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Event Import Worker (mma-stats → events)…")
	go w.run(ctx)
}

func (w *EventImportWorker) run(ctx context.Context) {
	if err := w.importBatch(ctx); err != nil {
		log.Printf("⚠️ Initial event import failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.importBatch(ctx); err != nil {
				log.Printf("❌ Event import batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Event Import Worker stopped")
			return
		}
	}
}

// importBatch fetches the upcoming events feed and creates missing events.
func (w *EventImportWorker) importBatch(ctx context.Context) error {
	upcoming, err := w.fetchUpcoming(ctx)
	if err != nil {
		return err
	}

	created := 0
	for _, ev := range upcoming {
		if ev.Name == "" || ev.Date.IsZero() {
			continue
		}

		eventSlug := slug.Make(ev.Name)

		var existing models.Event
		err := w.db.First(&existing, "slug = ?", eventSlug).Error
		if err == nil {
			continue // already imported
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up event %q: %w", ev.Name, err)
		}

		event := models.Event{
			Name:  ev.Name,
			Slug:  eventSlug,
			Date:  ev.Date.UTC(),
			Image: ev.Image,
		}

		err = w.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			for i, f := range ev.Fights {
				order := f.Order
				if order == 0 {
					order = i + 1
				}
				fight := models.Fight{
					EventID:         event.ID,
					FighterA:        f.FighterA,
					FighterB:        f.FighterB,
					Order:           order,
					ScheduledRounds: 3,
				}
				if err := tx.Create(&fight).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			log.Printf("[IMPORT] failed to create event %q: %v", ev.Name, err)
			continue
		}

		created++
		log.Printf("[IMPORT] 📅 imported event %q with %d fights", ev.Name, len(ev.Fights))
	}

	if created > 0 {
		log.Printf("[IMPORT] batch done: %d new events", created)
	}
	return nil
}

func (w *EventImportWorker) fetchUpcoming(ctx context.Context) ([]UpcomingEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", w.apiKey)
	req.Header.Set("x-rapidapi-host", w.apiHost)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch upcoming events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("events feed returned %d: %s", resp.StatusCode, string(body))
	}

	var events []UpcomingEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode events feed: %w", err)
	}
	return events, nil
}
