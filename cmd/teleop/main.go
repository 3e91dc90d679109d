package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-teleop/arm-teleop/domain/diagnostic"
	"github.com/open-teleop/arm-teleop/domain/teleop"
	"github.com/open-teleop/arm-teleop/pkg/api"
	"github.com/open-teleop/arm-teleop/pkg/config"
	"github.com/open-teleop/arm-teleop/pkg/console"
	customlog "github.com/open-teleop/arm-teleop/pkg/log"
	"github.com/open-teleop/arm-teleop/pkg/zeromq"
	"github.com/open-teleop/arm-teleop/services"
)

func main() {
	configDir := flag.String("config", "config", "Directory containing teleop_config.yaml")
	flag.Parse()

	bootstrap, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bootstrap config: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := customlog.NewLogrusLogger(bootstrap.Logging.Level, bootstrap.Logging.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Infof("Arm teleop controller starting")

	// The robot profile is served and updated through the monitor API,
	// but the session runs with whatever was loaded at startup.
	configService, err := services.NewRobotConfigService(bootstrap.Data.RobotConfigPath(), appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to create robot config service: %v", err)
	}
	robot := configService.GetCurrentConfig()
	if robot == nil {
		appLogger.Warnf("No robot profile loaded, using built-in defaults")
		robot = config.DefaultRobotConfig()
	}

	stats := diagnostic.NewSessionStatsService(robot.RobotID)

	// One trajectory client per joint group.
	armClient, err := zeromq.NewTrajectoryClient("arm", robot.Arm.Endpoint, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to connect arm trajectory client: %v", err)
	}
	defer armClient.Stop()

	torsoClient, err := zeromq.NewTrajectoryClient("torso", robot.Torso.Endpoint, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to connect torso trajectory client: %v", err)
	}
	defer torsoClient.Stop()

	gripperClient, err := zeromq.NewTrajectoryClient("gripper", robot.Gripper.Endpoint, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to connect gripper trajectory client: %v", err)
	}
	defer gripperClient.Stop()

	dispatcher := teleop.NewGoalDispatcher(robot, armClient, torsoClient, gripperClient, appLogger, stats)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var monitorApp *fiber.App
	if bootstrap.Monitor.Enabled {
		monitorApp = newMonitorApp(configService, stats, appLogger)
		go func() {
			addr := fmt.Sprintf(":%d", bootstrap.Monitor.HTTPPort)
			appLogger.Infof("Monitor API listening on %s", addr)
			if err := monitorApp.Listen(addr); err != nil {
				appLogger.Errorf("Monitor API stopped: %v", err)
			}
		}()
	}

	// Terminal signals end the session the same way the quit key does.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	window, err := console.New(bootstrap.Control.DisplayLines)
	if err != nil {
		appLogger.Fatalf("Failed to open session window: %v", err)
	}

	session, err := teleop.NewSession(teleop.SessionParams{
		Window:         window,
		Robot:          robot,
		Dispatcher:     dispatcher,
		Logger:         appLogger,
		RateHz:         bootstrap.Control.RateHz,
		DebounceWindow: bootstrap.Control.DebounceWindow(),
		Interrupt:      cancel,
		Status:         stats,
	})
	if err != nil {
		window.Close()
		appLogger.Fatalf("Failed to create session: %v", err)
	}

	runErr := session.Run(ctx)

	// Give the terminal back before the shutdown logging.
	window.Close()

	if monitorApp != nil {
		appLogger.Infof("Shutting down monitor API...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := monitorApp.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Monitor API forced to shutdown: %v", err)
		}
	}

	// A signal-cancelled run is a normal shutdown; any other session
	// error ends the process with a failure status.
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		appLogger.Fatalf("Session ended with error: %v", runErr)
	}

	appLogger.Infof("Teleop controller exited")
}

// newMonitorApp assembles the observability API: liveness routes, the
// session status endpoint, the robot profile endpoints, and the
// WebSocket status stream.
func newMonitorApp(configService services.RobotConfigService, stats *diagnostic.SessionStatsService, appLogger customlog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Arm Teleop Controller",
		ErrorHandler: customErrorHandler,
		// The startup banner would land on the session window.
		DisableStartupMessage: true,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "arm-teleop controller",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	apiGroup := app.Group("/api")
	apiGroup.Get("/status", stats.GetStatusHandler)

	api.RegisterRobotConfigRoutes(app, configService, appLogger)
	api.RegisterStatusRoutes(app, stats, appLogger)

	return app
}

// Custom error handler
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
