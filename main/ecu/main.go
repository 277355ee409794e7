package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jd3nn1s/telelink"
	"github.com/jd3nn1s/telelink/channel"
	"github.com/jd3nn1s/telelink/config"
	log "github.com/sirupsen/logrus"
)

var configFile = flag.String("config", "", "configuration file, defaults are used when empty")
var verbose = flag.Bool("verbose", false, "log every tick")

func main() {
	flag.Parse()
	log.SetLevel(log.InfoLevel)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatal("unable to load configuration: ", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ch, err := channel.Listen(cfg.ECU.Listen, cfg.ECU.QueueSize)
	if err != nil {
		log.Fatal("unable to start telemetry channel: ", err)
	}
	defer ch.Close()
	go func() {
		if err := ch.Serve(ctx); err != nil && err != context.Canceled {
			log.WithField("err", err).Error("telemetry channel stopped")
		}
	}()

	fanout := telelink.NewFanout()
	fanout.AddForwarder(ch)
	if cfg.ECU.CANInterface != "" {
		bus := telelink.NewCANBus(cfg.ECU.CANInterface)
		go func() {
			_ = telelink.Retry(ctx, bus, time.Second)
		}()
		fanout.AddForwarder(telelink.NewCANForwarder(bus))
	}

	producer := telelink.NewProducer()
	if err := producer.Run(ctx, cfg.ECU.TickInterval.Duration, fanout.Broadcast); err != context.Canceled {
		log.WithField("err", err).Error("producer stopped")
	}
}
