package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dmx-widget/internal/artnet"
	"dmx-widget/internal/config"
	"dmx-widget/internal/enttec"
	"dmx-widget/internal/sacn"
	"dmx-widget/internal/serial"
	"dmx-widget/internal/stats"
	"dmx-widget/internal/tui"
	"dmx-widget/internal/universe"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// pollInterval paces the widget poll loop. One millisecond keeps worst
// case added latency well under a DMX frame period.
const pollInterval = time.Millisecond

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	// Stderr so the TUI owns stdout.
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "dmx-widget").Logger().Level(lvl)
}

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	device := flag.String("device", "", "serial device (overrides config)")
	headless := flag.Bool("headless", false, "run without the TUI, with console passthrough")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *headless {
		cfg.Headless = true
	}

	logger := newLogger(cfg.LogLevel)

	profile, err := enttec.ProfileByName(cfg.Profile, cfg.UniversesOut)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid profile")
	}
	serialNumber, err := cfg.SerialNumberBytes()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid serial number")
	}

	serialCfg := serial.DefaultConfig(cfg.Device)
	serialCfg.Baud = cfg.Baud
	port, err := serial.Open(serialCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open serial port")
	}
	conn := serial.NewConn(port)
	defer conn.Close()
	logger.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).
		Str("profile", profile.Name).Int("universes", profile.UniversesOut).
		Msg("widget emulation started")

	var sacnSender *sacn.Sender
	if cfg.SACN.Enabled {
		sacnSender, err = sacn.NewSender(cfg.SACN.SourceName, cfg.SACN.Priority)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start sACN output")
		}
		defer sacnSender.Close()
		logger.Info().Uint16("start_universe", cfg.SACN.StartUniverse).Msg("sACN output enabled")
	}

	var artnetSender *artnet.Sender
	if cfg.ArtNet.Enabled {
		artnetSender, err = artnet.NewSender(cfg.ArtNet.Target)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to start Art-Net output")
		}
		defer artnetSender.Close()
		logger.Info().Str("target", cfg.ArtNet.Target).Msg("Art-Net output enabled")
	}

	universeManager := universe.NewManager()
	statsTracker := stats.NewTracker()

	// The deliver callback runs inline from Poll; the widget pointer is
	// valid by the time any frame can arrive.
	var widget *enttec.Widget
	deliver := func(u int, data *[enttec.MaxChannels]byte) {
		label := widget.LastLabel()
		count := widget.ChannelCount()

		universeManager.GetOrCreate(u).Update(data, label, count)
		statsTracker.RecordFrame(u, label)

		if sacnSender != nil {
			wireUniverse := cfg.SACN.StartUniverse + uint16(u)
			if err := sacnSender.Send(wireUniverse, data[:count]); err != nil {
				logger.Warn().Err(err).Int("universe", u).Msg("sACN send failed")
			}
		}
		if artnetSender != nil {
			if err := artnetSender.Send(u, data[:count]); err != nil {
				logger.Warn().Err(err).Int("universe", u).Msg("Art-Net send failed")
			}
		}
	}

	widget = enttec.New(conn, profile, deliver)
	widget.SerialNumber = serialNumber
	widget.IdleTimeout = cfg.IdleTimeoutDuration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	go pollLoop(ctx, cancel, widget, conn, statsTracker, logger)

	if cfg.Headless {
		go passthrough(conn, logger)
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		return
	}

	model := tui.NewModel(universeManager, statsTracker, profile.Name, cfg.Device)
	p := tea.NewProgram(model, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	if _, err := p.Run(); err != nil {
		logger.Fatal().Err(err).Msg("TUI failed")
	}
}

// pollLoop drives the widget until the context ends or the serial pump
// dies.
func pollLoop(ctx context.Context, cancel context.CancelFunc, widget *enttec.Widget, conn *serial.Conn, tracker *stats.Tracker, logger zerolog.Logger) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := widget.Poll(); err != nil {
				logger.Error().Err(err).Msg("poll failed")
				cancel()
				return
			}
			c := widget.Counters()
			tracker.RecordParserCounters(c.Dropped, c.IdleResets)
			if err := conn.Err(); err != nil {
				logger.Error().Err(err).Msg("serial port read failed")
				cancel()
				return
			}
		}
	}
}

// passthrough forwards console input to the serial port, the widget's
// secondary mode. Carriage returns are swallowed so line-buffered
// terminals don't inject them into the stream.
func passthrough(conn *serial.Conn, logger zerolog.Logger) {
	reader := bufio.NewReader(os.Stdin)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		if b == '\r' {
			continue
		}
		if _, err := conn.Write([]byte{b}); err != nil {
			logger.Warn().Err(err).Msg("passthrough write failed")
			return
		}
	}
}
