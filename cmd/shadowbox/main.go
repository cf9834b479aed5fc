// Package main provides the shadowbox binary: the music-synchronized
// boxing choreography engine behind a websocket overlay endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/config"
	"github.com/shadowboxlive/shadowbox/internal/observability"
	"github.com/shadowboxlive/shadowbox/internal/overlay"
	"github.com/shadowboxlive/shadowbox/internal/rng"
	"github.com/shadowboxlive/shadowbox/internal/scripting"
	"github.com/shadowboxlive/shadowbox/internal/server"
	"github.com/shadowboxlive/shadowbox/internal/sim/ai"
	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/camera"
	"github.com/shadowboxlive/shadowbox/internal/sim/match"
	"github.com/shadowboxlive/shadowbox/internal/sim/rig"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	presetsDir := flag.String("presets-dir", "", "strategy preset YAML directory; overrides config, empty = config value")
	scriptsDir := flag.String("scripts-dir", "", "Lua tuning script directory; overrides config, empty = config value")
	seed := flag.Int64("seed", 0, "seed for the decision RNG; 0 = non-deterministic, any other value replays bit-identically for a fixed input sequence")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src rng.Source
	if *seed != 0 {
		src = rng.NewSeededSource(*seed)
		logger.Info("using seeded rng", zap.Int64("seed", *seed))
	} else {
		src = rng.NewCryptoSource()
	}

	// Strategy presets: built-ins plus any YAML overrides.
	presets := ai.BuiltinPresets()
	presetDir := cfg.AI.PresetsDir
	if *presetsDir != "" {
		presetDir = *presetsDir
	}
	if presetDir != "" {
		loaded, err := ai.LoadPresets(presetDir)
		if err != nil {
			logger.Fatal("loading strategy presets", zap.Error(err))
		}
		for _, p := range loaded {
			presets[p.Name] = p
		}
		logger.Info("strategy presets loaded",
			zap.String("dir", presetDir),
			zap.Int("count", len(loaded)),
		)
	}

	matchCfg := match.DefaultConfig()
	matchCfg.TensionThreshold = cfg.Match.TensionThresholdSec
	matchCfg.TensionInterval = cfg.Match.TensionIntervalSec
	matchCfg.KnockoutWindow = cfg.Match.KnockoutWindowSec
	matchCfg.LosingSideBias = cfg.Match.LosingSideBias
	matchCfg.RedName = cfg.Match.RedName
	matchCfg.BlueName = cfg.Match.BlueName
	matchCfg.Camera = camera.Config{
		MaxShake:             cfg.Camera.MaxShake,
		MaxZoom:              cfg.Camera.MaxZoom,
		ShakeDecay:           cfg.Camera.ShakeDecay,
		ZoomDamping:          cfg.Camera.ZoomDamping,
		NearKOWindow:         cfg.Camera.NearKOWindowSec,
		HitShakeScale:        cfg.Camera.HitShakeScale,
		MitigatedShakeFactor: cfg.Camera.MitigatedShakeFactor,
		ReducedMotionFactor:  cfg.Camera.ReducedMotionFactor,
		DownbeatBump:         cfg.Camera.DownbeatBump,
		ComboZoomNudge:       cfg.Camera.ComboZoomNudge,
	}

	hub := overlay.NewHub(logger)
	poseRig := rig.NewProcedural()
	orch := match.New(matchCfg, poseRig, hub, src, logger)
	poseRig.Place(orch.Fighter(0), bout.Vec3{X: -0.5})
	poseRig.Place(orch.Fighter(1), bout.Vec3{X: 0.5})

	for i, name := range []string{cfg.Match.RedPreset, cfg.Match.BluePreset} {
		if p, ok := presets[name]; ok {
			orch.UsePreset(i, p)
		} else if name != "" {
			logger.Warn("unknown strategy preset", zap.String("preset", name))
		}
	}

	// Live tuning scripts.
	scriptDir := cfg.Scripting.ScriptsDir
	if *scriptsDir != "" {
		scriptDir = *scriptsDir
	}
	if scriptDir != "" {
		scripts := scripting.NewManager(logger)
		scripts.SetAggressiveness = func(corner int, v float64) {
			if corner == 0 || corner == 1 {
				orch.AI(corner).UpdateAggressiveness(v)
			}
		}
		scripts.SetSkill = func(corner int, v float64) {
			if corner == 0 || corner == 1 {
				orch.AI(corner).UpdateSkill(v)
			}
		}
		scripts.SetSongEnergy = orch.SetSongEnergy
		if err := scripts.Load(scriptDir, cfg.Scripting.InstructionLimit); err != nil {
			logger.Fatal("loading tuning scripts", zap.Error(err))
		}
		defer scripts.Close()

		// Hook callbacks fire during Dispatch on the simulation goroutine,
		// so touching the orchestrator from them is safe.
		hub.OnTrack = func(title string, totalMs float64) {
			scripts.OnTrackChange(title, totalMs/1000)
		}
		hub.OnDownbeatCount = scripts.OnDownbeat
		logger.Info("tuning scripts loaded", zap.String("dir", scriptDir))
	}

	mux := http.NewServeMux()
	mux.Handle("/overlay", hub)

	lc := server.NewLifecycle(logger)
	lc.Add("sim-loop", server.NewSimLoop(cfg.Sim.TickRate, hub, orch, logger))
	lc.Add("http", server.NewHTTPService(cfg.Server.Addr(), mux, logger))

	logger.Info("shadowbox starting",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("tickRate", cfg.Sim.TickRate),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("lifecycle error", zap.Error(err))
	}
}
