// Command seed loads a JSON fixture of drivers, vehicles and activities into
// a running API instance. Intended for demo environments and local testing.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type fixture struct {
	Drivers    []json.RawMessage `json:"drivers"`
	Vehicles   []json.RawMessage `json:"vehicles"`
	Activities []json.RawMessage `json:"activities"`
}

func main() {
	var (
		baseURL     string
		fixturePath string
		timeout     time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&fixturePath, "fixture", filepath.Join("scripts", "seed", "fixture.json"), "Path to JSON fixture file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	fx, err := loadFixture(fixturePath)
	if err != nil {
		log.Fatalf("failed to load fixture: %v", err)
	}

	client := &http.Client{Timeout: timeout}

	total, failed := 0, 0
	for _, batch := range []struct {
		path string
		rows []json.RawMessage
	}{
		{"/drivers", fx.Drivers},
		{"/vehicles", fx.Vehicles},
		{"/activities", fx.Activities},
	} {
		for i, row := range batch.rows {
			total++
			if err := post(client, baseURL+batch.path, row); err != nil {
				failed++
				log.Printf("POST %s [%d]: %v", batch.path, i, err)
			}
		}
	}

	fmt.Printf("seeded %d of %d records\n", total-failed, total)
	if failed > 0 {
		os.Exit(1)
	}
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fx, nil
}

func post(client *http.Client, url string, body json.RawMessage) error {
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, payload)
	}
	return nil
}
