// Command rocket runs the on-board flight-telemetry aggregator: three
// sensor workers feed the aggregator, which emits a JSON snapshot at
// a fixed cadence over the radio downlink (and, optionally, the MQTT
// mirror, websocket live feed, and ground panel display).
package main

import (
	"os"

	"github.com/Niettzche/Rocket/internal/supervisor"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	os.Exit(supervisor.Run(configPath))
}
