// Command envnode runs the environmental sensing node on a Linux host:
// BMP280 sensors on embd or periph I2C buses, measurement reports written to
// stdout as JSON lines, and optional Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"envnode-go/bus"
	"envnode-go/errcode"
	"envnode-go/services/config"
	"envnode-go/services/envsense"
	"envnode-go/services/heartbeat"

	_ "github.com/kidoman/embd/host/all"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	configPath  = flag.String("config", "", "JSON config file (default: embedded config for -device)")
	deviceID    = flag.String("device", "envnode", "embedded config to use when -config is empty")
	metricsAddr = flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. :9100")
)

// publish writes every message payload received on sub as one JSON line.
// It returns once conn is disconnected.
func publish(conn *bus.Connection, sub *bus.Subscription, w io.Writer) {
	enc := json.NewEncoder(w)
	for m := range sub.Channel() {
		if err := enc.Encode(m.Payload); err != nil {
			log.Printf("%s: %s: %v", conn.ID(), m.Topic, err)
		}
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	os.Exit(run(os.Stdout))
}

// run wires the node and blocks until a signal or a fatal service error. The
// return value is the process exit code.
func run(stdout io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, config.CtxDeviceKey, *deviceID)

	b := bus.NewBus(16)
	out := b.NewConnection("publisher")
	defer out.Disconnect()
	go publish(out, out.Subscribe(bus.T("env", "#")), stdout)

	var metrics *envsense.Metrics
	if *metricsAddr != "" {
		metrics = envsense.NewMetrics(prometheus.DefaultRegisterer)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: listening on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				log.Printf("metrics: %v", err)
			}
		}()
	}

	if err := config.NewConfigService(*configPath).Publish(ctx, b.NewConnection("config")); err != nil {
		log.Printf("config: %v", err)
		return exitCode(errcode.InvalidConfig)
	}
	(&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))

	svc := envsense.New(envsense.Options{Metrics: metrics})
	if err := svc.Run(ctx, b.NewConnection("envsense")); err != nil {
		log.Printf("envsense: %v", err)
		// Non-zero exit lets the supervisor restart the node.
		return exitCode(errcode.Of(err))
	}
	log.Printf("envnode: stopped")
	return 0
}

func exitCode(c errcode.Code) int {
	switch c {
	case errcode.InvalidConfig, errcode.InvalidParams, errcode.UnknownBus, errcode.SlotInUse, errcode.NoSlots:
		return 2
	default:
		return 1
	}
}
