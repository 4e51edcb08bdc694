package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// The simulator stands in for real fleet telemetry: it publishes position
// updates to <prefix>/positions the same way onboard units would, so a
// locally running engine has a moving fleet to dispatch.
func main() {
	cfgPath := flag.String("config", "", "simulator config file (json or yaml)")
	flag.Parse()

	cfg := Config{}
	if *cfgPath != "" {
		var err error
		cfg, err = LoadConfig(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}
	cfg.SetDefaults()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("medfleet-sim").
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	cli := paho.NewClient(opts)
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		log.Fatalf("connect %s: %v", cfg.Broker, tok.Error())
	}
	defer cli.Disconnect(250)

	fleet := NewFleet(cfg)
	topic := cfg.TopicPrefix + "/positions"
	tick := time.Duration(cfg.TickSeconds) * time.Second
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	log.Printf("simulating %d units around (%.4f, %.4f), publishing to %s every %s",
		cfg.FleetSize, cfg.CenterLat, cfg.CenterLon, topic, tick)
	for {
		select {
		case now := <-ticker.C:
			for _, pos := range fleet.Step(tick, now.UTC()) {
				payload, err := json.Marshal(pos)
				if err != nil {
					log.Printf("marshal %s: %v", pos.ResourceID, err)
					continue
				}
				if tok := cli.Publish(topic, 0, false, payload); tok.Wait() && tok.Error() != nil {
					log.Printf("publish %s: %v", pos.ResourceID, tok.Error())
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
