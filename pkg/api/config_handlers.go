package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	customlog "github.com/open-teleop/arm-teleop/pkg/log"
	"github.com/open-teleop/arm-teleop/services"
)

// RobotConfigHandler holds dependencies for the robot profile API
// endpoints.
type RobotConfigHandler struct {
	configService services.RobotConfigService
	logger        customlog.Logger
}

// NewRobotConfigHandler creates a new handler for robot profile
// endpoints.
func NewRobotConfigHandler(configService services.RobotConfigService, logger customlog.Logger) *RobotConfigHandler {
	if configService == nil {
		panic("ConfigService cannot be nil in NewRobotConfigHandler")
	}
	if logger == nil {
		panic("Logger cannot be nil in NewRobotConfigHandler")
	}
	return &RobotConfigHandler{
		configService: configService,
		logger:        logger,
	}
}

// RegisterRobotConfigRoutes registers the robot profile API endpoints
// with the Fiber app.
func RegisterRobotConfigRoutes(app *fiber.App, configService services.RobotConfigService, logger customlog.Logger) {
	h := NewRobotConfigHandler(configService, logger)

	apiGroup := app.Group("/api/v1/config")

	// GET returns the raw on-disk profile YAML for editing.
	apiGroup.Get("/robot", h.handleGetRobotConfig)

	// PUT validates and persists a replacement profile.
	apiGroup.Put("/robot", h.handleUpdateRobotConfig)

	logger.Infof("Registered robot profile API endpoints under /api/v1/config")
}

// handleGetRobotConfig handles GET requests for the current robot
// profile YAML.
func (h *RobotConfigHandler) handleGetRobotConfig(c *fiber.Ctx) error {
	h.logger.Debugf("Handling GET request for /api/v1/config/robot")
	yamlData, err := h.configService.GetCurrentConfigYAML()
	if err != nil {
		h.logger.Errorf("Failed to get current robot profile YAML: %v", err)
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("Robot profile not available: %v", err),
		})
	}

	c.Set(fiber.HeaderContentType, "application/x-yaml")
	return c.Send(yamlData)
}

// handleUpdateRobotConfig handles PUT requests replacing the robot
// profile. A rejected profile changes nothing; an accepted one applies
// when the next session starts.
func (h *RobotConfigHandler) handleUpdateRobotConfig(c *fiber.Ctx) error {
	h.logger.Debugf("Handling PUT request for /api/v1/config/robot")

	contentType := c.Get(fiber.HeaderContentType)
	if contentType != "application/x-yaml" && contentType != "application/yaml" && contentType != "text/yaml" {
		// Relaxed check, try to process anyway but log the mismatch.
		h.logger.Warnf("Received PUT request with unexpected Content-Type: %s", contentType)
	}

	newConfigYAML := c.Body()
	if len(newConfigYAML) == 0 {
		h.logger.Errorf("Received empty body in PUT request for robot profile update.")
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Request body cannot be empty.",
		})
	}

	if err := h.configService.UpdateConfig(newConfigYAML); err != nil {
		h.logger.Errorf("Failed to update robot profile: %v", err)
		if strings.Contains(err.Error(), "validation failed") || strings.Contains(err.Error(), "invalid YAML format") {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Profile update failed: %v", err),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Internal server error during profile update: %v", err),
		})
	}

	h.logger.Infof("Successfully processed PUT request to update robot profile.")
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Robot profile updated successfully. Changes apply when the next session starts.",
	})
}
