// De cronjob is de externe trigger voor de periodieke scans: de service
// plant zelf niets in. Draait als los proces naast de server en roept de
// interne endpoints aan met het gedeelde token.
package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mosewear/mose-webshop-sub004/internal/config"
)

func main() {
	config.Load()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("INTERNAL_API_TOKEN")
	if token == "" {
		log.Fatal("❌ INTERNAL_API_TOKEN ontbreekt")
	}

	schedule := os.Getenv("ABANDONED_SCAN_SCHEDULE")
	if schedule == "" {
		schedule = "0 9 * * *" // elke ochtend om 09:00
	}
	labelSchedule := os.Getenv("PENDING_LABEL_SCAN_SCHEDULE")
	if labelSchedule == "" {
		labelSchedule = "*/30 * * * *" // elk half uur
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := callInternal(baseURL, token, "/api/internal/scan-abandoned"); err != nil {
			log.Printf("❌ Scan onbetaalde retourlabels mislukt: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("❌ Ongeldig cron-schema %q: %v", schedule, err)
	}
	_, err = c.AddFunc(labelSchedule, func() {
		if err := callInternal(baseURL, token, "/api/internal/scan-pending-labels"); err != nil {
			log.Printf("❌ Inhaalronde labelaankopen mislukt: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("❌ Ongeldig cron-schema %q: %v", labelSchedule, err)
	}

	c.Start()
	log.Printf("⏰ Cronjob gestart (schema's: %s, %s)", schedule, labelSchedule)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx := c.Stop()
	<-ctx.Done()
	log.Println("🔌 Cronjob gestopt")
}

func callInternal(baseURL, token, path string) error {
	req, err := http.NewRequest(http.MethodPost, baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s gaf %d: %s", path, resp.StatusCode, string(body))
	}

	log.Printf("✅ %s: %s", path, string(body))
	return nil
}
