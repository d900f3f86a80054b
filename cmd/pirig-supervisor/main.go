// SPDX-License-Identifier: BSD-3-Clause

// Command pirig-supervisor runs on the controller board. It constructs
// every rig and vent controller from a TOML configuration file and then
// runs the single-threaded, one-second tick loop described in spec.md
// §5: poll every rig, collect the GPU temperatures it reports, then
// drive every vent with those temperatures plus this tick's ambient
// sensor readings.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/ktsol/pirig/internal/ambient"
	"github.com/ktsol/pirig/internal/config"
	"github.com/ktsol/pirig/internal/gpioline"
	"github.com/ktsol/pirig/internal/obslog"
	"github.com/ktsol/pirig/internal/rig"
	"github.com/ktsol/pirig/internal/vent"
)

// defaultSensorBin is the DHT driver utility invoked for every
// configured ambient sensor; spec.md §1 treats this driver as an
// external collaborator whose contract (print one integer Celsius
// reading, given a GPIO line number argument) is fixed.
const defaultSensorBin = "dht22-read"

const tickInterval = time.Second

func main() {
	configPath := flag.String("c", "/etc/pirig/supervisor.toml", "path to the supervisor TOML configuration file")
	flag.Parse()

	logger := obslog.New()

	cfg, err := config.LoadSupervisorConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	sensors := buildSensors(cfg.Sensors)
	vents := buildVents(cfg.GPIOChip, cfg.Vents, sensors, logger)
	rigs := buildRigs(cfg.GPIOChip, cfg.Rigs, logger, time.Now())

	logger.Info("pirig-supervisor starting", "rigs", len(rigs), "vents", len(vents), "sensors", len(sensors))
	runLoop(context.Background(), rigs, vents, logger)
}

func buildSensors(specs []config.SensorSpec) map[string]*ambient.Sensor {
	sensors := make(map[string]*ambient.Sensor, len(specs))
	for _, s := range specs {
		sensors[s.ID] = ambient.New(s.ID, ambient.NewGPIOReader(defaultSensorBin, s.Line))
	}
	return sensors
}

func buildVents(chip string, specs []config.VentSpec, sensors map[string]*ambient.Sensor, logger *slog.Logger) []*vent.Controller {
	vents := make([]*vent.Controller, 0, len(specs))
	for _, v := range specs {
		relay, err := gpioline.Open(chip, v.Line, gpioline.Output)
		if err != nil {
			logger.Error("failed to open vent relay line", "vent", v.ID, "error", err)
			os.Exit(1)
		}

		subscribed := make([]vent.Sensor, 0, len(v.Sensors))
		for _, id := range v.Sensors {
			s, ok := sensors[id]
			if !ok {
				logger.Error("vent references unknown sensor", "vent", v.ID, "sensor", id)
				os.Exit(1)
			}
			subscribed = append(subscribed, s)
		}

		var opts []vent.Option
		if v.MinOnDurationSecond > 0 {
			opts = append(opts, vent.WithMinOnDuration(time.Duration(v.MinOnDurationSecond)*time.Second))
		}

		vc, err := vent.New(v.ID, relay, subscribed, v.SensorsTempOn, v.SensorsTempOff, v.RigTempOn, v.RigTempOff, logger, opts...)
		if err != nil {
			logger.Error("invalid vent configuration", "vent", v.ID, "error", err)
			os.Exit(1)
		}
		vents = append(vents, vc)
	}
	return vents
}

func buildRigs(chip string, specs []config.RigSpec, logger *slog.Logger, now time.Time) []*rig.Controller {
	rigs := make([]*rig.Controller, 0, len(specs))
	for _, r := range specs {
		led, err := gpioline.Open(chip, r.LEDLine, gpioline.Input)
		if err != nil {
			logger.Error("failed to open rig LED line", "rig", r.ID, "error", err)
			os.Exit(1)
		}
		sw, err := gpioline.Open(chip, r.SwitchLine, gpioline.Output)
		if err != nil {
			logger.Error("failed to open rig switch line", "rig", r.ID, "error", err)
			os.Exit(1)
		}

		rcfg := rig.NewConfig(rig.WithCriticalGPUTemp(r.CriticalGPUTemp))
		client := rig.NewHTTPClient(r.URI, rcfg.HTTPTimeout)
		press := rig.NewGPIOPresser(sw)
		rigs = append(rigs, rig.New(r.ID, r.URI, led, press, client, rcfg, logger, now))
	}
	return rigs
}

// runLoop is the supervisor's entire control plane: poll rigs
// sequentially, feed the collected GPU temperatures to vents
// sequentially, sleep, repeat. Per spec.md §5, within a tick every rig
// is evaluated before any vent runs, and no locking is needed because
// the loop is single-threaded.
func runLoop(ctx context.Context, rigs []*rig.Controller, vents []*vent.Controller, logger *slog.Logger) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		now := time.Now()

		gpuTemps := make([]int, 0, len(rigs))
		for _, rc := range rigs {
			result := rc.Tick(ctx, now)
			if result.Err != nil {
				logger.Debug("rig poll failed", "rig", result.RigID, "error", result.Err)
			}
			gpuTemps = append(gpuTemps, result.Temp...)
		}

		for _, vc := range vents {
			if err := vc.Handle(now, gpuTemps); err != nil {
				logger.Warn("vent handle failed", "error", err)
			}
		}

		<-ticker.C
	}
}
