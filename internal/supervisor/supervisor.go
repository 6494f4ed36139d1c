// Package supervisor wires the whole process together: loads config,
// constructs the channel/tracker/radio/ambient sinks, spawns the
// three sensor workers and the aggregator, installs the shutdown
// signal handler, and drives orderly shutdown.
package supervisor

import (
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/Niettzche/Rocket/internal/aggregator"
	"github.com/Niettzche/Rocket/internal/baro"
	"github.com/Niettzche/Rocket/internal/caps"
	"github.com/Niettzche/Rocket/internal/clock"
	"github.com/Niettzche/Rocket/internal/config"
	"github.com/Niettzche/Rocket/internal/gps"
	"github.com/Niettzche/Rocket/internal/imu"
	"github.com/Niettzche/Rocket/internal/livefeed"
	"github.com/Niettzche/Rocket/internal/logging"
	"github.com/Niettzche/Rocket/internal/mqttmirror"
	"github.com/Niettzche/Rocket/internal/panel"
	"github.com/Niettzche/Rocket/internal/queue"
	"github.com/Niettzche/Rocket/internal/radio"
	"github.com/Niettzche/Rocket/internal/stopflag"
	"github.com/Niettzche/Rocket/internal/summary"
)

const (
	idlePollSecs = 0.2
	sourceTag    = "SUPERVISOR"
)

// Run loads configuration from configPath (empty for built-in
// defaults), then sets up and runs the whole system until SIGINT or
// SIGTERM. It returns a process exit code: 0 on clean shutdown,
// non-zero if critical setup failed.
func Run(configPath string) int {
	if err := config.InitGlobal(configPath); err != nil {
		logging.Error(sourceTag, "config load failed: %v", err)
		return 1
	}
	cfg := config.Get()

	q := queue.New(cfg.ChannelCapacity)
	registry := caps.New()
	stop := &stopflag.Flag{}
	c := clock.Real{}

	transport := setupRadio(cfg)
	mirror := setupMQTT(cfg)
	feed := setupLiveFeed(cfg)
	pnl := setupPanel(cfg)

	var sinks []aggregator.AmbientSink
	if mirror != nil {
		sinks = append(sinks, mirror)
	}
	if feed != nil {
		sinks = append(sinks, feed)
	}

	agg := aggregator.New(q, c, cfg.EmitIntervalSeconds, cfg.PopTimeoutSeconds, transport, sinks...)
	if pnl != nil {
		agg.SetPanel(pnl)
	}

	summary.Start(cfg.ChannelCapacity, cfg.EmitIntervalSeconds)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		stop.Set()
	}()

	aggDone := make(chan struct{})
	go func() {
		agg.Run(stop)
		close(aggDone)
	}()

	var workers sync.WaitGroup
	spawnWorkers(&workers, cfg, q, registry, stop, c)

	for !stop.IsSet() {
		time.Sleep(time.Duration(idlePollSecs * float64(time.Second)))
	}

	q.Close()
	workers.Wait()
	<-aggDone

	if mirror != nil {
		mirror.Close()
	}
	if feed != nil {
		feed.Stop()
	}
	if pnl != nil {
		pnl.Close()
	}

	summary.Final(registry, agg.Tracker())
	return 0
}

func setupRadio(cfg *config.Config) *radio.Transport {
	transport := radio.New(nil, cfg.RadioTopic)
	if err := transport.Init(cfg.RadioChannel, cfg.RadioFreqHz, cfg.RadioSF); err != nil {
		logging.Warn(sourceTag, "radio init failed, continuing stubbed: %v", err)
	}
	return transport
}

func setupMQTT(cfg *config.Config) *mqttmirror.Mirror {
	if cfg.MQTTBroker == "" {
		return nil
	}
	return mqttmirror.Connect(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
}

func setupLiveFeed(cfg *config.Config) *livefeed.Feed {
	if cfg.LiveFeedBindAddr == "" {
		return nil
	}
	f := livefeed.New(cfg.LiveFeedBindAddr, cfg.LiveFeedPath)
	f.Start()
	return f
}

func setupPanel(cfg *config.Config) *panel.Panel {
	p, err := panel.Open("", cfg.DisplayLeftI2CAddr, cfg.DisplayRightI2CAddr)
	if err != nil {
		logging.Warn(sourceTag, "ground panel unavailable, continuing without it: %v", err)
		return nil
	}
	return p
}

// spawnWorkers opens (or falls back to dummy for) each of the three
// sensor devices and spawns its worker goroutine, registering each
// with wg so the caller can join them after closing the queue.
func spawnWorkers(wg *sync.WaitGroup, cfg *config.Config, q *queue.Queue, registry *caps.Registry, stop *stopflag.Flag, c clock.Clock) {
	wg.Add(3)

	go func() {
		defer wg.Done()
		dev, err := imu.Open(imu.Config{BusName: strconv.Itoa(cfg.IMUI2CBus), Addr: cfg.IMUI2CAddr})
		if err != nil {
			logging.Warn("MPU6050", "device unavailable, running dummy loop: %v", err)
			dev = nil
		}
		imu.Run(dev, q, registry, stop, c)
	}()

	go func() {
		defer wg.Done()
		port, err := baro.Open(baro.Config{Port: cfg.BaroSerialPort, BaudRate: uint(cfg.BaroBaudRate)})
		if err != nil {
			logging.Warn("BMP180", "device unavailable, running dummy loop: %v", err)
			port = nil
		}
		baro.Run(port, q, registry, stop, c)
	}()

	go func() {
		defer wg.Done()
		port, err := gps.Open(gps.Config{Port: cfg.GPSSerialPort, BaudRate: uint(cfg.GPSBaudRate)})
		if err != nil {
			logging.Warn("NEO6M", "device unavailable, running dummy loop: %v", err)
			port = nil
		}
		gps.Run(port, q, registry, stop, c)
	}()
}
