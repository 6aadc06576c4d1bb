// Ledbetter - LED animation host
//
// This is the main entry point for the ledbetter host. It loads a layout,
// builds the configured animation, and plays it at a fixed frame rate into
// the enabled outputs: a Fadecandy/OPC server, a terminal preview, MQTT and
// the WebSocket stream of the HTTP API.
//
// Usage:
//
//	ledbetter                      run the host
//	ledbetter token -sub NAME      print a control token for the API
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/ledbetter/animation"
	"github.com/nerrad567/ledbetter/internal/api"
	"github.com/nerrad567/ledbetter/internal/audit"
	"github.com/nerrad567/ledbetter/internal/auth"
	"github.com/nerrad567/ledbetter/internal/catalog"
	"github.com/nerrad567/ledbetter/internal/control"
	"github.com/nerrad567/ledbetter/internal/infrastructure/config"
	"github.com/nerrad567/ledbetter/internal/infrastructure/database"
	"github.com/nerrad567/ledbetter/internal/infrastructure/influxdb"
	"github.com/nerrad567/ledbetter/internal/infrastructure/logging"
	"github.com/nerrad567/ledbetter/internal/infrastructure/mqtt"
	"github.com/nerrad567/ledbetter/internal/layout"
	"github.com/nerrad567/ledbetter/internal/output/fadecandy"
	"github.com/nerrad567/ledbetter/internal/output/mqttframe"
	"github.com/nerrad567/ledbetter/internal/player"
	"github.com/nerrad567/ledbetter/internal/preview"
	"github.com/nerrad567/ledbetter/internal/process"
	"github.com/nerrad567/ledbetter/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

const logFilePermissions = 0o640

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the host, separated from main for testability. It returns nil
// when ctx is cancelled and an error if startup fails or the animation
// faults.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting ledbetter",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Info("configuration loaded", "path", configPath, "level", cfg.Logging.Level)

	// The preview owns the terminal, so it is stopped from its own key
	// handler as well as by signals.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	layouts := layout.NewSQLiteRepository(db.DB)
	spec, err := resolveLayout(ctx, cfg.Layout, layouts)
	if err != nil {
		return err
	}

	d, err := buildAnimation(ctx, cfg.Animation, spec)
	if err != nil {
		return err
	}
	log.Info("animation built",
		"animation", d.Name(),
		"layout", spec.Name,
		"strips", len(spec.Strips),
		"pixels", spec.PixelCount(),
	)

	runID := uuid.NewString()
	p, err := player.New(d, player.Config{Interval: cfg.FrameInterval(), RunID: runID},
		log.With("component", "player"))
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	ctl := control.New(p, log.With("component", "control"))

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		p.SetMetrics(influxClient)
		ctl.SetMetrics(influxClient)
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := startMQTT(cfg, ctl, p, log)
		if mqttErr != nil {
			return mqttErr
		}
		defer func() {
			// Stop taking commands before the player is gone.
			if unsubErr := mqttClient.Unsubscribe(mqtt.Topics{}.CommandParams()); unsubErr != nil && !errors.Is(unsubErr, mqtt.ErrNotConnected) {
				log.Warn("unsubscribing from commands failed", "error", unsubErr)
			}
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
	} else {
		log.Info("MQTT disabled")
	}

	var opcServer api.StatsProvider
	if cfg.Outputs.OPC.Enabled {
		if cfg.Outputs.OPC.Server.Managed {
			mgr, stop := startOPCServer(ctx, cfg.Outputs.OPC.Server, log)
			defer stop()
			opcServer = mgr
		}
		p.AddSink(fadecandy.New(cfg.Outputs.OPC, log.With("component", "opc")))
		log.Info("OPC output enabled", "address", cfg.Outputs.OPC.Address)
	}

	if cfg.Outputs.Preview.Enabled {
		screen, previewErr := preview.Open()
		if previewErr != nil {
			return fmt.Errorf("opening preview: %w", previewErr)
		}
		defer screen.Close()
		go screen.Watch(cancel)
		p.AddSink(screen)
	}

	if cfg.API.Enabled {
		hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
		p.AddSink(hub)

		srv, apiErr := api.New(api.Deps{
			Config:     cfg.API,
			WS:         cfg.WebSocket,
			Security:   cfg.Security,
			Logger:     log.With("component", "api"),
			Controller: ctl,
			Layouts:    layouts,
			Hub:        hub,
			Audit:      audit.NewSQLiteRepository(db.DB),
			OPCServer:  opcServer,
			Version:    version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := srv.Close(); closeErr != nil {
				log.Error("error stopping API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	log.Info("initialisation complete", "run_id", runID, "fps", cfg.Player.FPS)

	if err := p.Run(ctx); err != nil {
		return fmt.Errorf("playing %s: %w", d.Name(), err)
	}

	log.Info("ledbetter stopped", "frames", p.Frames())
	return nil
}

func getConfigPath() string {
	if path := os.Getenv("LEDBETTER_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// newLogger builds the configured logger. With logging.file set, logs are
// appended to that file instead of stdout.
func newLogger(cfg config.LoggingConfig) (*logging.Logger, func(), error) {
	if cfg.File == "" {
		return logging.New(cfg, version), func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return logging.NewWriter(f, cfg, version), func() { _ = f.Close() }, nil
}

// resolveLayout loads the layout from file or from the database. With
// layout.store set, a file layout is also saved for later runs.
func resolveLayout(ctx context.Context, cfg config.LayoutConfig, repo layout.Repository) (*layout.Spec, error) {
	if cfg.File == "" {
		spec, err := repo.Get(ctx, cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("loading layout %q: %w", cfg.Name, err)
		}
		return spec, nil
	}

	spec, err := layout.Load(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	if cfg.Name != "" {
		spec.Name = cfg.Name
	}
	if cfg.Store {
		if err := repo.Save(ctx, spec); err != nil {
			return nil, fmt.Errorf("storing layout %q: %w", spec.Name, err)
		}
	}
	return spec, nil
}

// buildAnimation creates the named animation, applies the configured
// parameters and finalizes it on spec.
func buildAnimation(ctx context.Context, cfg config.AnimationConfig, spec *layout.Spec) (animation.Driver, error) {
	d, err := catalog.New(cfg.Name)
	if err != nil {
		return nil, err
	}
	if err := catalog.SetParams(d, cfg.Params); err != nil {
		return nil, fmt.Errorf("animation %s: %w", cfg.Name, err)
	}
	if err := layout.Apply(ctx, d, spec); err != nil {
		return nil, fmt.Errorf("applying layout %q: %w", spec.Name, err)
	}
	return d, nil
}

func startMQTT(cfg *config.Config, ctl *control.Controller, p *player.Player, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	client.SetLogger(log.With("component", "mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2
	if err := client.Subscribe(mqtt.Topics{}.CommandParams(), qos, ctl.HandleCommand); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("subscribing to commands: %w", err)
	}
	ctl.SetPublisher(client)

	// Publish the starting parameters once the loop is serving requests.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ctl.PublishParams(ctx); err != nil && !errors.Is(err, player.ErrStopped) {
			log.Warn("publishing initial params failed", "error", err)
		}
	}()

	if cfg.Outputs.MQTTFrames.Enabled {
		p.AddSink(mqttframe.New(client, cfg.Outputs.MQTTFrames.Every))
		log.Info("MQTT frame output enabled", "every", cfg.Outputs.MQTTFrames.Every)
	}
	return client, nil
}

// startOPCServer supervises a local Fadecandy server. The returned stop
// function cancels it and waits for the child to exit.
func startOPCServer(ctx context.Context, cfg config.OPCServerConfig, log *logging.Logger) (*process.Manager, func()) {
	mgr := process.NewManager(process.Config{
		Name:         "fcserver",
		Binary:       cfg.Binary,
		Args:         cfg.Args,
		RestartDelay: time.Duration(cfg.RestartDelay) * time.Second,
		MaxRestarts:  cfg.MaxRestarts,
	})
	mgr.SetLogger(log.With("component", "fcserver"))

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := mgr.Run(ctx); err != nil {
			log.Error("fcserver supervisor stopped", "error", err)
		}
	}()
	return mgr, func() {
		cancel()
		<-done
	}
}

// runToken prints a signed control token for the API.
func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("sub", "", "token subject (required)")
	ttl := fs.Duration("ttl", auth.DefaultTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subject == "" {
		return errors.New("token: -sub is required")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	token, err := auth.GenerateToken(*subject, cfg.Security.JWT.Secret, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
