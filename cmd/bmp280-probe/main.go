// Command bmp280-probe is an interactive console for one BMP280 on a host
// I2C bus. It exercises every register accessor, dumps the calibration
// block, and takes compensated readings.
//
//	bmp280-probe -bus periph -name 1 -addr 0x77
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"envnode-go/drivers/bmp280"
	"envnode-go/transport/i2chost"

	"github.com/dustin/go-humanize"
	"github.com/google/shlex"
	_ "github.com/kidoman/embd/host/all"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
)

var (
	busType  = flag.String("bus", i2chost.TypeEmbd, "bus backend: embd or periph")
	busID    = flag.Int("id", 1, "embd bus number")
	busName  = flag.String("name", "", "periph bus name (empty: first bus)")
	addr     = flag.Uint("addr", bmp280.AddressPrimary, "7-bit device address")
	periodMs = flag.Int("period", 25, "minimum spacing between bus transactions, ms")
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	log.SetPrefix("bmp280-probe: ")

	cfg := i2chost.Config{Type: *busType, ID: *busID, Name: *busName}
	var (
		bus *i2chost.Locked
		ref func(*physic.Env) error
	)
	if cfg.Type == i2chost.TypePeriph {
		pb, err := i2chost.OpenPeriph(cfg.Name)
		if err != nil {
			log.Fatal(err)
		}
		bus = i2chost.NewLocked(pb)
		ref = reference(pb, uint16(*addr))
	} else {
		var err error
		if bus, err = i2chost.Open(cfg); err != nil {
			log.Fatal(err)
		}
	}
	defer bus.Close()

	dev, err := bmp280.New(bus, bmp280.Config{
		Address: uint16(*addr),
		Period:  time.Duration(*periodMs) * time.Millisecond,
	})
	if err != nil {
		log.Fatal(err)
	}
	p := &probe{dev: dev, out: os.Stdout, ref: ref}
	p.repl(os.Stdin)
}

// reference lazily opens periph's bmxx80 driver on the same device.
func reference(pb *i2chost.Periph, addr uint16) func(*physic.Env) error {
	var d *bmxx80.Dev
	return func(e *physic.Env) error {
		if d == nil {
			var err error
			if d, err = bmxx80.NewI2C(pb.Bus(), addr, &bmxx80.DefaultOpts); err != nil {
				return err
			}
		}
		return d.Sense(e)
	}
}

type probe struct {
	dev      *bmp280.Device
	out      io.Writer
	lastRead time.Time
	// ref reads the same sensor through periph's driver; nil unless the
	// bus backend is periph.
	ref func(*physic.Env) error
}

func (p *probe) repl(in io.Reader) {
	sc := bufio.NewScanner(in)
	fmt.Fprint(p.out, "> ")
	for sc.Scan() {
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Fprintln(p.out, "parse:", err)
		} else if len(args) > 0 {
			if args[0] == "quit" || args[0] == "exit" {
				return
			}
			if err := p.exec(args[0], args[1:]); err != nil {
				fmt.Fprintln(p.out, "error:", err)
			}
		}
		fmt.Fprint(p.out, "> ")
	}
}

const usage = `commands:
  chipid | selftest | status | calib | limiter
  read [n]                 n compensated readings
  fetch t|p|both           selected channels
  get power|iir|spi|os|standby
  set power <0-2> | iir <0-4> | spi on|off | os <p 0-5> <t 0-5> | standby <0-7>
  xcheck                   compare with periph bmxx80 (periph bus only; reconfigures the device)
  reset | help | quit`

func (p *probe) exec(cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(p.out, usage)
	case "chipid":
		id, err := p.dev.ChipID()
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "chip id %#02x %#02x (want %#02x)\n", id[0], id[1], bmp280.ChipID)
	case "selftest":
		if err := p.dev.SelfTest(); err != nil {
			return err
		}
		fmt.Fprintln(p.out, "ok")
	case "status":
		updating, measuring, err := p.dev.Status()
		if err != nil {
			return err
		}
		fmt.Fprintf(p.out, "updating=%v measuring=%v\n", updating, measuring)
		if !p.lastRead.IsZero() {
			fmt.Fprintln(p.out, "last read", humanize.Time(p.lastRead))
		}
	case "calib":
		c := p.dev.Calibration()
		fmt.Fprintln(p.out, "T:", c.Temperature())
		fmt.Fprintln(p.out, "P:", c.Pressure())
	case "limiter":
		l := p.dev.Limiter()
		fmt.Fprintf(p.out, "%s, period %s\n", l.State(), l.Period())
	case "read":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return fmt.Errorf("read: bad count %q", args[0])
			}
			n = v
		}
		for i := 0; i < n; i++ {
			m, err := p.dev.Read()
			if err != nil {
				return err
			}
			p.lastRead = time.Now()
			fmt.Fprintf(p.out, "%.2f °C  %s\n", m.Temperature, humanize.SIWithDigits(m.Pressure, 2, "Pa"))
		}
	case "fetch":
		want, err := channel(args)
		if err != nil {
			return err
		}
		vals, err := p.dev.Fetch(want)
		if err != nil {
			return err
		}
		p.lastRead = time.Now()
		fmt.Fprintln(p.out, vals)
	case "reset":
		return p.dev.Reset()
	case "xcheck":
		return p.xcheck()
	case "get":
		if len(args) != 1 {
			return fmt.Errorf("get: want one field")
		}
		return p.get(args[0])
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("set: want field and value")
		}
		return p.set(args[0], args[1:])
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func channel(args []string) (bmp280.Channel, error) {
	if len(args) == 0 {
		return bmp280.Both, nil
	}
	switch strings.ToLower(args[0]) {
	case "t", "temperature":
		return bmp280.Temperature, nil
	case "p", "pressure":
		return bmp280.Pressure, nil
	case "both":
		return bmp280.Both, nil
	}
	return 0, fmt.Errorf("fetch: unknown channel %q", args[0])
}

func (p *probe) get(field string) error {
	var (
		v   any
		err error
	)
	switch field {
	case "power":
		v, err = p.dev.Power()
	case "iir":
		v, err = p.dev.IIR()
	case "spi":
		v, err = p.dev.SPI()
	case "standby":
		v, err = p.dev.Standby()
	case "os":
		var ps, ts bmp280.Oversampling
		ps, ts, err = p.dev.Oversampling()
		v = fmt.Sprintf("pressure=%d temperature=%d", ps, ts)
	default:
		return fmt.Errorf("get: unknown field %q", field)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "%s = %v\n", field, v)
	return nil
}

// set takes semantic indices and encodes them before writing.
func (p *probe) set(field string, args []string) error {
	if field == "spi" {
		switch args[0] {
		case "on", "1", "true":
			return p.dev.SetSPI(true)
		case "off", "0", "false":
			return p.dev.SetSPI(false)
		}
		return fmt.Errorf("set spi: want on|off")
	}
	idx := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("set %s: %q is not a number", field, a)
		}
		idx[i] = v
	}
	switch field {
	case "power":
		m, err := bmp280.PowerMode(idx[0])
		if err != nil {
			return err
		}
		return p.dev.SetPower(m)
	case "iir":
		f, err := bmp280.IIRMode(idx[0])
		if err != nil {
			return err
		}
		return p.dev.SetIIR(f)
	case "standby":
		s, err := bmp280.StandbyTime(idx[0])
		if err != nil {
			return err
		}
		return p.dev.SetStandby(s)
	case "os":
		if len(idx) != 2 {
			return fmt.Errorf("set os: want pressure and temperature")
		}
		ps, ts, err := bmp280.OversamplingMode(idx[0], idx[1])
		if err != nil {
			return err
		}
		return p.dev.SetOversampling(ps, ts)
	}
	return fmt.Errorf("set: unknown field %q", field)
}

func (p *probe) xcheck() error {
	if p.ref == nil {
		return fmt.Errorf("xcheck: needs -bus periph")
	}
	var e physic.Env
	if err := p.ref(&e); err != nil {
		return err
	}
	m, err := p.dev.Read()
	if err != nil {
		return err
	}
	p.lastRead = time.Now()
	refT := float64(e.Temperature-physic.ZeroCelsius) / float64(physic.Celsius)
	refP := float64(e.Pressure) / float64(physic.Pascal)
	fmt.Fprintf(p.out, "bmp280  %.2f °C  %s\n", m.Temperature, humanize.SIWithDigits(m.Pressure, 2, "Pa"))
	fmt.Fprintf(p.out, "bmxx80  %s  %s\n", e.Temperature, e.Pressure)
	fmt.Fprintf(p.out, "delta   %+.2f °C  %+.1f Pa\n", m.Temperature-refT, m.Pressure-refP)
	return nil
}
