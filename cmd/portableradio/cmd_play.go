// ABOUTME: Interactive play command streaming one station
// ABOUTME: Prints now-playing updates and takes single-letter commands on stdin
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mwynn/portable-radio/internal/application/config"
	"github.com/mwynn/portable-radio/internal/application/controller"
	"github.com/mwynn/portable-radio/internal/domain"
	"github.com/mwynn/portable-radio/internal/domain/track"
	"github.com/mwynn/portable-radio/internal/infrastructure/feed"
	"github.com/mwynn/portable-radio/internal/infrastructure/musicbrainz"
	"github.com/mwynn/portable-radio/internal/infrastructure/parser"
	"github.com/mwynn/portable-radio/internal/infrastructure/store"
	"github.com/mwynn/portable-radio/internal/infrastructure/stream"
)

var playCmd = &cobra.Command{
	Use:   "play <station>",
	Short: "Tune in to a station",
	Long: `Tune in to a station and follow its now-playing feed.

While playing:
  s  save (or unsave) the current track
  p  pause / resume
  q  quit`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	trackStore, err := store.Open(settings.Store.Path)
	if err != nil {
		return fmt.Errorf("open track store: %w", err)
	}
	defer trackStore.Close()

	errCh := make(chan error, 1)

	ctrl := controller.New(controller.Deps{
		Stations: stations,
		Settings: settings,
		Feed: feed.NewHTTP(feed.HTTPConfig{
			Timeout:   settings.Feed.Timeout(),
			UserAgent: settings.UserAgent,
		}),
		Enricher: musicbrainz.New(musicbrainz.Config{
			BaseURL:     settings.MusicBrainz.URL,
			UserAgent:   settings.UserAgent,
			Timeout:     settings.MusicBrainz.Timeout(),
			MinInterval: settings.MusicBrainz.MinInterval(),
			Limit:       settings.MusicBrainz.Limit,
		}, logger),
		Store:    trackStore,
		Registry: parser.NewRegistry(logger),
		NewTransport: func(st config.StationConfig, ev domain.TransportEvents) domain.Transport {
			return stream.NewHTTP(stream.HTTPConfig{
				URL:       st.Stream,
				UserAgent: settings.UserAgent,
			}, ev, logger)
		},
		Notify: controller.Notifications{
			TrackDisplayed: func(stationID string, _ uuid.UUID, t *track.Track) {
				line := t.DisplayText
				if t.Album != "" {
					line += "  [" + t.Album + "]"
				}
				fmt.Printf("%s  %s\n", stationID, line)
			},
			TrackCleared: func() {
				fmt.Println("stopped")
			},
			SessionError: func(stationID string, err error) {
				errCh <- fmt.Errorf("stream for %s failed: %w", stationID, err)
			},
		},
		Log: logger,
	})

	stationID := strings.ToUpper(args[0])
	if err := ctrl.Play(cmd.Context(), stationID); err != nil {
		return err
	}
	defer ctrl.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	inputCh := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputCh <- strings.TrimSpace(scanner.Text())
		}
		close(inputCh)
	}()

	for {
		select {
		case <-sigCh:
			return nil
		case err := <-errCh:
			return err
		case line, ok := <-inputCh:
			if !ok {
				waitForever(cmd.Context(), sigCh, errCh)
				return nil
			}
			switch line {
			case "q":
				return nil
			case "p":
				// Re-selecting the playing station in detail view
				// toggles pause.
				if err := ctrl.Play(cmd.Context(), stationID); err != nil {
					return err
				}
			case "s":
				added, err := ctrl.SaveCurrentTrack()
				if err != nil {
					fmt.Println(err)
					continue
				}
				if added {
					fmt.Println("saved")
				} else {
					fmt.Println("removed from saved tracks")
				}
			}
		}
	}
}

// waitForever blocks on shutdown signals once stdin is gone (e.g. the
// player runs detached).
func waitForever(ctx context.Context, sigCh chan os.Signal, errCh chan error) {
	select {
	case <-ctx.Done():
	case <-sigCh:
	case <-errCh:
	}
}
