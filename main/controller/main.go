package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jd3nn1s/telelink"
	"github.com/jd3nn1s/telelink/command"
	"github.com/jd3nn1s/telelink/config"
	"github.com/mattn/go-tty"
	log "github.com/sirupsen/logrus"
)

var configFile = flag.String("config", "", "configuration file, defaults are used when empty")

func main() {
	flag.Parse()
	log.SetLevel(log.InfoLevel)

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.Fatal("unable to load configuration: ", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var actuator command.Actuator = command.LogActuator{}
	if cfg.Controller.CANInterface != "" {
		bus := telelink.NewCANBus(cfg.Controller.CANInterface)
		go func() {
			_ = telelink.Retry(ctx, bus, time.Second)
		}()
		actuator = bus
	}

	t, err := tty.Open()
	if err != nil {
		log.Fatal("unable to open terminal: ", err)
	}
	defer t.Close()

	sampler := command.NewSampler(cfg.Controller.HoldWindow.Duration)
	go func() {
		for {
			r, err := t.ReadRune()
			if err != nil {
				log.WithField("err", err).Warn("unable to read terminal")
				cancel()
				return
			}
			// ctrl-c arrives as a rune while the terminal is raw
			if r == 3 {
				cancel()
				return
			}
			sampler.Press(command.ParseKey(r), time.Now())
		}
	}()

	log.Info("W/S throttle and brake, A/D steer, R/F gear, Q/E blinkers, L headlights")
	_ = command.Run(ctx, cfg.Controller.TickInterval.Duration, command.NewModel(), sampler.Sample, actuator)
}
