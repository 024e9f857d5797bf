package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	c "lautenbacher.net/gowiring/config"
	"lautenbacher.net/gowiring/hardware"
	"lautenbacher.net/gowiring/logging"
	"lautenbacher.net/gowiring/monitor"
	"lautenbacher.net/gowiring/wiring"
)

const usage = `usage: gowiring [-config file] [-backend name] [-numbering wpi|gpio|phys|sys] <command> [args]

commands:
  mode <pin> <in|out|pwm|clock|up|down|tri>
  read <pin>
  write <pin> <0|1>
  pwm <pin> <value>
  blink <pin> [ms] [count]
  readall
  monitor
  i2c <devid> [reg]
  spi <byte>...
  serial <text>
  wpi2gpio <pin>
  phys2gpio <pin>
`

var errUsage = errors.New("bad usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, out io.Writer) int {
	flags := flag.NewFlagSet("gowiring", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	cfile := flags.String("config", "", "configuration file (default ./"+c.CONFILE+" when present)")
	backend := flags.String("backend", "", "hardware backend: "+strings.Join(hardware.Backends(), ", "))
	numbering := flags.String("numbering", "", "pin numbering: wpi, gpio, phys or sys")
	if err := flags.Parse(args); err != nil || flags.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	conf, err := loadConfig(*cfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *backend != "" {
		conf.Backend = *backend
	}
	if *numbering != "" {
		conf.Numbering = *numbering
	}
	if err := conf.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cmd, cmdArgs := flags.Arg(0), flags.Args()[1:]
	if err := logging.Init(cmd == "monitor", conf.Logging.Level, conf.Logging.Format,
		conf.Logging.File != "", conf.Logging.File); err != nil {
		fmt.Fprintln(os.Stderr, "can't set up logging:", err)
		return 1
	}
	defer logging.Close()

	lib, err := openLibrary(conf)
	if err != nil {
		slog.Error("Can't set up hardware", "error", err)
		return 1
	}

	if err := dispatch(ctx, lib, conf, cmd, cmdArgs, out); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		slog.Error("Command failed", "command", cmd, "error", err)
		return 1
	}
	return 0
}

func loadConfig(cfile string) (*c.Config, error) {
	if cfile == "" {
		if _, err := os.Stat(c.CONFILE); err != nil {
			return c.Default(), nil
		}
		cfile = c.CONFILE
	}
	return c.ReadConfig(cfile)
}

func openLibrary(conf *c.Config) (*wiring.Library, error) {
	var drv hardware.Driver
	if conf.Backend == "" {
		drv = hardware.Default()
	} else {
		d, err := hardware.Open(conf.Backend)
		if err != nil {
			return nil, err
		}
		drv = d
	}
	return wiring.New(conf.Configuration(), wiring.WithDriver(drv))
}

func dispatch(ctx context.Context, lib *wiring.Library, conf *c.Config, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "mode":
		return cmdMode(lib, args)
	case "read":
		return cmdRead(lib, args, out)
	case "write":
		return cmdWrite(lib, args)
	case "pwm":
		return cmdPwm(lib, args)
	case "blink":
		return cmdBlink(ctx, lib, conf, args)
	case "readall":
		fmt.Fprint(out, monitor.RenderTable(lib.ReadAll()))
		return nil
	case "monitor":
		m := monitor.New(lib, conf.Monitor.Refresh, conf.Monitor.History, conf.Monitor.Pins)
		return m.Run(ctx)
	case "i2c":
		return cmdI2C(lib, args, out)
	case "spi":
		return cmdSPI(lib, conf, args, out)
	case "serial":
		return cmdSerial(lib, conf, args, out)
	case "wpi2gpio":
		return cmdMap(lib.WpiPinToGpio, args, out)
	case "phys2gpio":
		return cmdMap(lib.PhysPinToGpio, args, out)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func intArg(args []string, i int, what string) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing %s: %w", what, errUsage)
	}
	v, err := strconv.ParseInt(args[i], 0, 0)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q: %w", what, args[i], errUsage)
	}
	return int(v), nil
}

func parseMode(s string) (wiring.Mode, error) {
	switch strings.ToLower(s) {
	case "in", "input":
		return wiring.Input(wiring.PullNone), nil
	case "out", "output":
		return wiring.Output, nil
	case "pwm":
		return wiring.PwmOutput, nil
	case "clock":
		return wiring.ClockOutput, nil
	case "up":
		return wiring.Input(wiring.PullUp), nil
	case "down":
		return wiring.Input(wiring.PullDown), nil
	case "tri", "off":
		return wiring.Input(wiring.PullNone), nil
	}
	return wiring.Mode{}, fmt.Errorf("unknown mode %q: %w", s, errUsage)
}

func cmdMode(lib *wiring.Library, args []string) error {
	pin, err := intArg(args, 0, "pin")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("missing mode: %w", errUsage)
	}
	mode, err := parseMode(args[1])
	if err != nil {
		return err
	}
	return lib.Pin(pin).SetMode(mode)
}

func cmdRead(lib *wiring.Library, args []string, out io.Writer) error {
	pin, err := intArg(args, 0, "pin")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, lib.Pin(pin).DigitalRead().Code())
	return nil
}

func cmdWrite(lib *wiring.Library, args []string) error {
	pin, err := intArg(args, 0, "pin")
	if err != nil {
		return err
	}
	v, err := intArg(args, 1, "value")
	if err != nil {
		return err
	}
	return lib.Pin(pin).DigitalWrite(wiring.LevelFromCode(v))
}

func cmdPwm(lib *wiring.Library, args []string) error {
	pin, err := intArg(args, 0, "pin")
	if err != nil {
		return err
	}
	v, err := intArg(args, 1, "value")
	if err != nil {
		return err
	}
	return lib.Pin(pin).PwmWrite(v)
}

// cmdBlink toggles a pin until interrupted, or count times when count is
// given.
func cmdBlink(ctx context.Context, lib *wiring.Library, conf *c.Config, args []string) error {
	pin, err := intArg(args, 0, "pin")
	if err != nil {
		return err
	}
	period := 500
	if len(args) > 1 {
		if period, err = intArg(args, 1, "period"); err != nil {
			return err
		}
	}
	count := 0
	if len(args) > 2 {
		if count, err = intArg(args, 2, "count"); err != nil {
			return err
		}
	}
	if conf.ThreadPriority > 0 {
		if err := lib.PromoteThreadPriority(wiring.ThreadPriority(conf.ThreadPriority)); err != nil {
			slog.Warn("Running without real-time priority", "error", err)
		}
	}

	var led interface{ DigitalWrite(wiring.Level) }
	if lib.Configuration() == wiring.SysfsOnly {
		p := lib.Pin(pin)
		led = writer(func(l wiring.Level) { _ = p.DigitalWrite(l) })
	} else {
		out, err := lib.Pin(pin).AsOutput()
		if err != nil {
			return err
		}
		led = out
	}

	slog.Info("Blinking", "pin", pin, "period", time.Duration(period)*time.Millisecond)
	ticker := time.NewTicker(time.Duration(period) * time.Millisecond)
	defer ticker.Stop()
	level := wiring.High
	for n := 0; count == 0 || n < count; n++ {
		led.DigitalWrite(level)
		if level == wiring.High {
			level = wiring.Low
		} else {
			level = wiring.High
		}
		select {
		case <-ctx.Done():
			led.DigitalWrite(wiring.Low)
			return nil
		case <-ticker.C:
		}
	}
	led.DigitalWrite(wiring.Low)
	return nil
}

type writer func(wiring.Level)

func (w writer) DigitalWrite(l wiring.Level) { w(l) }

func cmdI2C(lib *wiring.Library, args []string, out io.Writer) error {
	devID, err := intArg(args, 0, "device id")
	if err != nil {
		return err
	}
	dev, err := lib.SetupI2C(devID)
	if err != nil {
		return err
	}
	var v byte
	if len(args) > 1 {
		reg, err := intArg(args, 1, "register")
		if err != nil {
			return err
		}
		v, err = dev.ReadReg8(reg)
		if err != nil {
			return err
		}
	} else if v, err = dev.Read(); err != nil {
		return err
	}
	fmt.Fprintf(out, "0x%02x\n", v)
	return nil
}

func cmdSPI(lib *wiring.Library, conf *c.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("nothing to send: %w", errUsage)
	}
	buf := make([]byte, len(args))
	for i := range args {
		v, err := intArg(args, i, "byte")
		if err != nil {
			return err
		}
		buf[i] = byte(v)
	}
	dev, err := lib.SetupSPI(wiring.SpiChannel(conf.SPI.Channel), conf.SPI.Speed)
	if err != nil {
		return err
	}
	if err := dev.ReadWrite(buf); err != nil {
		return err
	}
	hex := make([]string, len(buf))
	for i, b := range buf {
		hex[i] = fmt.Sprintf("0x%02x", b)
	}
	fmt.Fprintln(out, strings.Join(hex, " "))
	return nil
}

// cmdSerial sends text and prints whatever arrives within 100ms.
func cmdSerial(lib *wiring.Library, conf *c.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("nothing to send: %w", errUsage)
	}
	dev, err := lib.OpenSerial(conf.Serial.Device, conf.Serial.Baud)
	if err != nil {
		return err
	}
	defer dev.Close()

	dev.PutString(strings.Join(args, " "))
	lib.Delay(100)
	n, err := dev.DataAvailable()
	if err != nil {
		return err
	}
	reply := make([]byte, 0, n)
	for range n {
		b, err := dev.GetChar()
		if err != nil {
			return err
		}
		reply = append(reply, b)
	}
	fmt.Fprintln(out, string(reply))
	return nil
}

func cmdMap(mapping func(int) int, args []string, out io.Writer) error {
	pin, err := intArg(args, 0, "pin")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, mapping(pin))
	return nil
}
