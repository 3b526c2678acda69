package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"routeiq/router/internal/config"
	"routeiq/router/internal/llm"
	"routeiq/router/internal/routing"
	"routeiq/router/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status          string                    `json:"status"`  // "ready" | "not_ready"
	Service         string                    `json:"service"` // Service name
	SnapshotVersion string                    `json:"snapshot_version,omitempty"`
	Checks          map[string]ReadinessCheck `json:"checks"` // Individual check results
}

type HealthHandler struct {
	db        *gorm.DB
	engine    *routing.Engine
	providers map[string]llm.Provider
	config    *config.Config
}

func NewHealthHandler(db *gorm.DB, engine *routing.Engine, providers map[string]llm.Provider, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		db:        db,
		engine:    engine,
		providers: providers,
		config:    cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "router",
		"version": "1.0.0",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	if handler.db == nil {
		checks["database"] = ReadinessCheck{
			Status:  "failed",
			Message: "Database not initialized",
		}
		allChecksPass = false
	} else if sqlDB, err := handler.db.DB(); err != nil || sqlDB.Ping() != nil {
		checks["database"] = ReadinessCheck{
			Status:  "failed",
			Message: "Database unreachable",
		}
		allChecksPass = false
	} else {
		checks["database"] = ReadinessCheck{
			Status: "ok",
		}
	}

	if len(handler.providers) == 0 {
		checks["providers"] = ReadinessCheck{
			Status:  "failed",
			Message: "No LLM providers initialized",
		}
		allChecksPass = false
	} else {
		checks["providers"] = ReadinessCheck{
			Status: "ok",
		}
	}

	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "router",
		Checks:  checks,
	}
	if handler.engine != nil {
		response.SnapshotVersion = handler.engine.SnapshotVersion()
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
