package app

import (
	"errors"
	"fmt"

	"github.com/atlas-shop/internal/config"
	"github.com/atlas-shop/internal/provider"
	"github.com/atlas-shop/internal/router"
	"github.com/atlas-shop/internal/worker"
)

// ErrNoServices 当前模式下没有可启动的服务
var ErrNoServices = errors.New("no services initialized")

// BuildRunner 按运行模式组装 HTTP 与通知 worker
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !isKnownMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	container := provider.NewContainer(cfg)
	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(listenAddr(cfg), engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		svc, err := buildWorker(cfg, container, mode)
		if err != nil {
			return nil, err
		}
		if svc != nil {
			services = append(services, svc)
		}
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("%w (mode=%s)", ErrNoServices, mode)
	}
	return NewRunner(services...), nil
}

// all 模式下队列未启用时仅运行 HTTP，通知走同步降级
func buildWorker(cfg *config.Config, container *provider.Container, mode string) (Service, error) {
	if !cfg.Queue.Enabled {
		if mode == ModeWorker {
			return nil, errors.New("worker mode requires queue.enabled")
		}
		return nil, nil
	}
	return worker.NewService(&cfg.Queue, worker.NewConsumer(container))
}

func listenAddr(cfg *config.Config) string {
	return cfg.Server.Host + ":" + cfg.Server.Port
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", listenAddr(opts.Config),
		"mode", opts.Mode,
		"queue_enabled", opts.Config.Queue.Enabled,
		"services", runner.Names(),
	)
	return RunWithOptions(runner, opts)
}
