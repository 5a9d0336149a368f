// Command listen subscribes to an event stream and logs every event it
// receives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-sse-broadcast/internal/infrastructure/logger"
	"go-sse-broadcast/internal/infrastructure/sseclient"
)

func main() {
	url := flag.String("url", "http://localhost:3000/events", "event stream URL")
	eventType := flag.String("type", "", "only log events of this type")
	limit := flag.Int("n", 0, "exit after this many logged events (0 = unlimited)")
	level := flag.String("level", "info", "log level")
	flag.Parse()

	lCfg := logger.NewDefaultConfig()
	parsed, err := logger.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	lCfg.Level = parsed
	log := logger.NewLogrusLogger(lCfg).WithField("app", "listen")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := listen(ctx, log, *url, *eventType, *limit); err != nil {
		log.Errorf("listener stopped: %v", err)
		os.Exit(1)
	}
}

func listen(ctx context.Context, log logger.Logger, url, eventType string, limit int) error {
	stream, err := sseclient.Subscribe(ctx, nil, url)
	if err != nil {
		return err
	}
	defer stream.Close()

	log.Infof("Subscribed to %s", url)

	seen := 0
	for {
		event, err := stream.Next()
		if err != nil {
			if sseclient.IsEOF(err) || ctx.Err() != nil {
				log.Info("Stream closed")
				return nil
			}
			return err
		}

		if eventType != "" && event.Type != eventType {
			continue
		}

		fields := logger.Fields{"event": event.Type}
		if event.ID != "" {
			fields["id"] = event.ID
		}
		if event.Payload == nil {
			// Not JSON; show the raw text
			log.WithFields(fields).Infof("raw: %s", event.Data)
		} else {
			log.WithFields(fields).Info(event.Data)
		}

		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
}
