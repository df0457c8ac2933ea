//go:build linux

// unikey-ibus is the Linux IBus engine for Vietnamese input.
//
// It connects to the IBus daemon over D-Bus and routes key events
// through the unikey composition core: Telex, VNI, and VIQR input with
// retroactive rewriting of committed text where the host allows it.
//
// Installation:
//  1. Copy binary to /usr/local/bin/unikey-ibus
//  2. Run unikey-ibus -install, then: ibus restart
//  3. Enable via ibus-setup or GNOME Settings > Keyboard > Input Sources
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/qduc/fcitx5-unikey/internal/composer"
	"github.com/qduc/fcitx5-unikey/internal/config"
	"github.com/qduc/fcitx5-unikey/internal/ime"
	"github.com/qduc/fcitx5-unikey/internal/keysym"
	"github.com/qduc/fcitx5-unikey/internal/logging"
	"github.com/qduc/fcitx5-unikey/internal/phoneng"
	"github.com/qduc/fcitx5-unikey/internal/surface"
)

func main() {
	configPath := flag.String("config", "", "configuration file path (default: XDG config dir)")
	installFlag := flag.Bool("install", false, "install the IBus component and exit")
	uninstallFlag := flag.Bool("uninstall", false, "remove the IBus component and exit")
	selftestFlag := flag.Bool("selftest", false, "run the composition core against an in-memory host and exit")
	flag.Parse()

	if *selftestFlag {
		if err := selfTest(); err != nil {
			fmt.Fprintf(os.Stderr, "selftest failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("selftest ok")
		return
	}

	if *installFlag {
		if err := installComponent(); err != nil {
			fmt.Fprintf(os.Stderr, "install failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Installed. Run 'ibus restart' to load the engine.")
		return
	}

	if *uninstallFlag {
		if err := uninstallComponent(); err != nil {
			fmt.Fprintf(os.Stderr, "uninstall failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Uninstalled.")
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "unikey-ibus: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if configPath == "" {
		configPath = config.ConfigPath()
	}

	cfg, created, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Close()
	logging.SetDefault(log)

	if created {
		log.Info("wrote default configuration", "path", configPath)
	}

	engine := ime.NewBusEngine(cfg, log)
	if err := engine.Start(); err != nil {
		return err
	}
	defer engine.Stop()

	// The toolbar toggles rewrite the config file, so reloads must be
	// picked up while running.
	loader := config.NewLoader(configPath)
	if _, err := loader.Load(); err != nil {
		log.Warn("config reload disabled", "error", err)
	} else {
		loader.OnChange(engine.SetConfig)
		if err := loader.Watch(); err != nil {
			log.Warn("config watch unavailable", "error", err)
		}
		defer loader.Close()
		go func() {
			for err := range loader.Errors() {
				log.Warn("config reload", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("shutting down", "signal", sig.String())
	return nil
}

// selfTest types a Vietnamese phrase through the full composition stack
// against an in-memory host and checks the committed document. Useful
// for verifying a build without an IBus session.
func selfTest() error {
	cfg := config.DefaultConfig()
	cfg.Commit.Immediate = true

	sim := surface.NewSim("selftest")
	comp := composer.New(composer.Options{
		Engine:  phoneng.NewEngine(phoneng.SchemeTelex),
		Surface: sim,
		Config:  cfg,
	})
	comp.FocusIn()

	for _, r := range "xin chaof vieetj nam " {
		comp.ProcessKeystroke(keysym.Press(keysym.Sym(r), 0))
	}
	comp.FocusOut()

	const want = "xin chào việt nam "
	if got := sim.Doc(); got != want {
		return fmt.Errorf("document = %q, want %q", got, want)
	}
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(&logging.Config{
		Level:     level,
		Format:    format,
		FilePath:  cfg.Logging.FilePath,
		Component: "unikey-ibus",
	})
}

func installComponent() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	componentDir := filepath.Join(home, ".local", "share", "ibus", "component")
	if err := os.MkdirAll(componentDir, 0o755); err != nil {
		return err
	}

	binPath, err := os.Executable()
	if err != nil {
		binPath = "/usr/local/bin/unikey-ibus"
	}

	componentXML := `<?xml version="1.0" encoding="utf-8"?>
<component>
    <name>org.freedesktop.IBus.Unikey</name>
    <description>Vietnamese input method</description>
    <exec>` + binPath + `</exec>
    <version>1.0.0</version>
    <license>GPL</license>
    <textdomain>unikey</textdomain>
    <engines>
        <engine>
            <name>unikey</name>
            <language>vi</language>
            <license>GPL</license>
            <icon>unikey</icon>
            <layout>us</layout>
            <longname>Unikey</longname>
            <description>Vietnamese input method (Telex, VNI, VIQR)</description>
            <rank>99</rank>
            <symbol>VN</symbol>
        </engine>
    </engines>
</component>`

	return os.WriteFile(filepath.Join(componentDir, "unikey.xml"), []byte(componentXML), 0o644)
}

func uninstallComponent() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(home, ".local", "share", "ibus", "component", "unikey.xml"))
}
