// Command vxlserver runs a standalone vxlcore world server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/vxlcore/server/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath    = flag.String("config", "server.toml", "path to the server configuration file")
		ip            = flag.String("ip", "", "override the listen address's host (ignored if empty)")
		port          = flag.String("port", "", "override the listen address's port (ignored if empty)")
		logLevel      = flag.String("logs", "info", "log level: debug, info, warn or error")
		resourcesPath = flag.String("resources-path", "", "accepted but ignored: resource pack loading is not implemented, a non-empty value only logs a warning")
		dataPath      = flag.String("server-data-path", "", "override the world data directory from the config file")
		sendTPS       = flag.Bool("send-tps", false, "broadcast ServerStatus (measured ticks-per-second) to clients once per second and log it locally")
	)
	flag.Parse()

	level := parseLogLevel(*logLevel)
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	uc, err := server.LoadUserConfig(*configPath)
	if err != nil {
		log.Error("load config", "err", err)
		return 1
	}
	conf := uc.Config(log)

	if *ip != "" || *port != "" {
		conf.Address = overrideAddress(conf.Address, *ip, *port)
	}
	if *dataPath != "" {
		conf.DataPath = *dataPath
	}
	if *resourcesPath != "" {
		log.Warn("resources-path set but resource pack loading is not implemented by this build; ignoring", "path", *resourcesPath)
	}
	if *sendTPS {
		conf.SendTPS = true
	}

	srv, err := conf.New()
	if err != nil {
		log.Error("construct server", "err", err)
		return 1
	}
	if err := srv.Listen(); err != nil {
		log.Error("listen", "err", err)
		return 1
	}

	if *sendTPS {
		go reportTPS(srv, log)
	}

	log.Info("server listening", "address", conf.Address, "name", conf.Name)
	srv.Accept()
	return 0
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func overrideAddress(base, ip, port string) string {
	host, p, err := net.SplitHostPort(base)
	if err != nil {
		host, p = "", ""
	}
	if ip != "" {
		host = ip
	}
	if port != "" {
		p = port
	}
	return fmt.Sprintf("%s:%s", host, p)
}

func reportTPS(srv *server.Server, log *slog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		log.Info("tps", "value", srv.TPS())
	}
}
