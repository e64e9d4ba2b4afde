package server

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/vxlcore/server/server/network"
	"github.com/vxlcore/server/server/world"
)

// Config contains options for starting a vxlcore server.
type Config struct {
	// Log is the Logger used for structured diagnostics across every
	// subsystem. If nil, Log is set to slog.Default().
	Log *slog.Logger
	// Address is the UDP address the RakNet listener binds to.
	Address string
	// Name is the server's display name, logged when the server starts
	// listening.
	Name string
	// TickRate is the simulation rate in ticks per second. If 0 or lower,
	// it defaults to 60.
	TickRate int
	// ViewRadius is the chunk watch radius around each connected player.
	// If 0 or lower, it defaults to 8.
	ViewRadius int32
	// SendWorkers is the number of background chunk-compression workers
	// the Chunk Sender dedicates to serialising outgoing chunk data. If 0
	// or lower, it defaults to 4.
	SendWorkers int
	// LoadWorkers is the number of background workers each world's Chunk
	// Map dedicates to loading and generating chunks. If 0 or lower, it
	// defaults to 4.
	LoadWorkers int
	// QueueLimit bounds the number of chunk frames a single client may have
	// in flight (sent but not yet acknowledged) before it is considered
	// backpressured. If 0 or lower, it defaults to 256.
	QueueLimit int
	// SpawnWorld is the world slug new connections spawn into.
	SpawnWorld string
	// SpawnPos is the chunk position new connections spawn at.
	SpawnPos world.ChunkPos
	// GeneratorSettings is passed to the generator for every world this
	// server creates.
	GeneratorSettings world.GeneratorSettings
	// DataPath is the directory LevelDB world databases are stored under,
	// one subdirectory per world slug.
	DataPath string
	// Generator supplies the GeneratorService used by every world. If
	// nil, a flat-world generator is used.
	Generator world.GeneratorService
	// Resources, if non-nil, enables the resource pack handshake archive
	// served to newly connected clients.
	Resources *network.ResourcesArchive
	// SendTPS enables a once-per-second ServerStatus broadcast of the
	// measured ticks-per-second to every connected client.
	SendTPS bool
	// Plugins configures the native Go plugin loader.
	Plugins PluginConfig
}

// PluginConfig configures the plugin subsystem embedded in a Config.
type PluginConfig struct {
	Enabled       bool
	Directory     string
	DataDirectory string
	Files         []string
}

// New creates a Server using the fields of conf, filling in defaults for
// anything left zero. The returned Server has not yet started listening;
// call Listen and Accept to bring it online.
func (conf Config) New() (*Server, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Name == "" {
		conf.Name = "vxlcore Server"
	}
	if conf.Address == "" {
		conf.Address = ":19132"
	}
	if conf.TickRate <= 0 {
		conf.TickRate = 60
	}
	if conf.ViewRadius <= 0 {
		conf.ViewRadius = 8
	}
	if conf.SendWorkers <= 0 {
		conf.SendWorkers = 4
	}
	if conf.LoadWorkers <= 0 {
		conf.LoadWorkers = 4
	}
	if conf.QueueLimit <= 0 {
		conf.QueueLimit = 256
	}
	if conf.SpawnWorld == "" {
		conf.SpawnWorld = "overworld"
	}
	if conf.Generator == nil {
		conf.Generator = flatGenerator{}
	}
	if conf.DataPath == "" {
		conf.DataPath = "server-data"
	}
	return newServer(conf)
}

// UserConfig is the TOML-serialisable form of Config, the shape an operator
// edits on disk.
type UserConfig struct {
	Network struct {
		Address string `toml:"address"`
	} `toml:"network"`
	Server struct {
		Name     string `toml:"name"`
		TickRate int    `toml:"tick_rate"`
		SendTPS  bool   `toml:"send_tps"`
	} `toml:"server"`
	World struct {
		SpawnWorld  string `toml:"spawn_world"`
		ViewRadius  int32  `toml:"view_radius"`
		LoadWorkers int    `toml:"load_workers"`
		Seed        int64  `toml:"seed"`
		DataPath    string `toml:"data_path"`
	} `toml:"world"`
	Network2 struct {
		SendWorkers int `toml:"send_workers"`
		QueueLimit  int `toml:"queue_limit"`
	} `toml:"network_tuning"`
	Plugins struct {
		Enabled       bool     `toml:"enabled"`
		Directory     string   `toml:"directory"`
		DataDirectory string   `toml:"data_directory"`
		Files         []string `toml:"files"`
	} `toml:"plugins"`
}

// DefaultUserConfig returns a UserConfig with the same defaults Config.New
// fills in, suitable for writing out as a starter server.toml.
func DefaultUserConfig() UserConfig {
	var uc UserConfig
	uc.Network.Address = ":19132"
	uc.Server.Name = "vxlcore Server"
	uc.Server.TickRate = 60
	uc.World.SpawnWorld = "overworld"
	uc.World.ViewRadius = 8
	uc.World.LoadWorkers = 4
	uc.World.DataPath = "server-data"
	uc.Network2.SendWorkers = 4
	uc.Network2.QueueLimit = 256
	uc.Plugins.Directory = "plugins"
	uc.Plugins.DataDirectory = "plugin-data"
	return uc
}

// LoadUserConfig reads and decodes the TOML file at path. If the file does
// not exist, a default configuration is written to path and returned.
func LoadUserConfig(path string) (UserConfig, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		uc := DefaultUserConfig()
		encoded, err := toml.Marshal(uc)
		if err != nil {
			return uc, fmt.Errorf("marshal default config: %w", err)
		}
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return uc, fmt.Errorf("write default config: %w", err)
		}
		return uc, nil
	}
	if err != nil {
		return UserConfig{}, fmt.Errorf("read config: %w", err)
	}
	var uc UserConfig
	if err := toml.Unmarshal(contents, &uc); err != nil {
		return UserConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return uc, nil
}

// Config converts a UserConfig into a Config ready for New, applying log as
// the structured logger every subsystem uses.
func (uc UserConfig) Config(log *slog.Logger) Config {
	return Config{
		Log:         log,
		Address:     strings.TrimSpace(uc.Network.Address),
		Name:        uc.Server.Name,
		TickRate:    uc.Server.TickRate,
		ViewRadius:  uc.World.ViewRadius,
		SendWorkers: uc.Network2.SendWorkers,
		LoadWorkers: uc.World.LoadWorkers,
		QueueLimit:  uc.Network2.QueueLimit,
		SpawnWorld:  uc.World.SpawnWorld,
		DataPath:    uc.World.DataPath,
		SendTPS:     uc.Server.SendTPS,
		GeneratorSettings: world.GeneratorSettings{
			"seed": uc.World.Seed,
		},
		Plugins: PluginConfig{
			Enabled:       uc.Plugins.Enabled,
			Directory:     uc.Plugins.Directory,
			DataDirectory: uc.Plugins.DataDirectory,
			Files:         uc.Plugins.Files,
		},
	}
}
