package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jd3nn1s/telelink/command"
	"github.com/jd3nn1s/telelink/config"
	"github.com/jd3nn1s/telelink/consumer"
	"github.com/jd3nn1s/telelink/dashboard"
	"github.com/mattn/go-tty"
	log "github.com/sirupsen/logrus"
)

var configFile = flag.String("config", "", "configuration file, defaults are used when empty")
var keys = flag.Bool("keys", false, "show driver input read from the terminal")

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

	c := consumer.New(cfg.Dashboard.Address, cfg.Dashboard.Backoff.Duration)
	c.DialTimeout = cfg.Dashboard.DialTimeout.Duration
	go func() {
		log.WithField("address", c.Address).Info("connecting to ECU")
		_ = c.ConnectWithRetry(ctx)
	}()

	inputs := make(chan command.Event, 1)
	if *keys {
		t, err := tty.Open()
		if err != nil {
			log.Fatal("unable to open terminal: ", err)
		}
		defer t.Close()
		go readKeys(t, inputs, cancel)
	}

	d := dashboard.New(&dashboard.WriterRenderer{W: os.Stdout})
	_ = d.Run(ctx, c.Queue(), inputs)
}

func readKeys(t *tty.TTY, inputs chan<- command.Event, cancel context.CancelFunc) {
	for {
		r, err := t.ReadRune()
		if err != nil {
			log.WithField("err", err).Warn("unable to read terminal")
			return
		}
		// ctrl-c arrives as a rune while the terminal is raw
		if r == 3 {
			cancel()
			return
		}
		if ev := command.ParseKey(r); ev != command.None {
			inputs <- ev
		}
	}
}
