//go:build rp2040 || rp2350

// Command pico-envnode runs the sensing node on a Raspberry Pi Pico with
// BMP280 sensors on i2c0 (bus "a") and i2c1 (bus "b").
package main

import (
	"context"
	"time"

	"envnode-go/bus"
	"envnode-go/services/config"
	"envnode-go/services/envsense"
	"envnode-go/services/heartbeat"
	"envnode-go/transport/i2chost"
	"machine"

	"tinygo.org/x/drivers"
)

// buses holds i2c0 and i2c1 at 400 kHz on board-default pins.
func buses() map[int]drivers.I2C {
	b0 := machine.I2C0
	_ = b0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	b1 := machine.I2C1
	_ = b1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C1_SDA_PIN,
		SCL:       machine.I2C1_SCL_PIN,
	})
	return map[int]drivers.I2C{0: b0, 1: b1}
}

func printReport(r envsense.Report) {
	println("[measurement] time", r.Time)
	for name, v := range r.Measurements {
		println("  ", name, "T", int(v.Temperature*100), "cC", "P", int(v.Pressure*100), "Pa")
	}
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	hw := buses()
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico")

	b := bus.NewBus(4)
	mon := b.NewConnection("ui").Subscribe(bus.T("env", "#"))
	go func() {
		for m := range mon.Channel() {
			switch p := m.Payload.(type) {
			case envsense.Report:
				printReport(p)
			case heartbeat.Ping:
				println("[heartbeat]", p.Message, p.Time)
			}
		}
	}()

	if err := config.NewConfigService("").Publish(ctx, b.NewConnection("config")); err != nil {
		println("[main] config:", err.Error())
		return
	}
	(&heartbeat.Service{}).Start(ctx, b.NewConnection("heartbeat"))

	svc := envsense.New(envsense.Options{
		Open: func(c i2chost.Config) (drivers.I2C, error) {
			if i2c, ok := hw[c.ID]; ok {
				return i2c, nil
			}
			return nil, i2chost.ErrUnknownType
		},
	})
	if err := svc.Run(ctx, b.NewConnection("envsense")); err != nil {
		println("[main] envsense stopped:", err.Error())
	}
	// Device-level recovery: wait, then start over.
	time.Sleep(10 * time.Second)
	machine.CPUReset()
}
