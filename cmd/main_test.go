package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/fitrate/arena/internal/adapters/http/api"
	"github.com/fitrate/arena/internal/adapters/http/swagger"
	"github.com/fitrate/arena/internal/adapters/kvstore"
	app "github.com/fitrate/arena/internal/app"
	"github.com/fitrate/arena/internal/config"
	"github.com/fitrate/arena/pkg/logger"
	"github.com/fitrate/arena/pkg/metrics"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FITRATE_ADDR", ":8080")
			_ = os.Setenv("FITRATE_QUEUE_TTL_SECONDS", "120")
			_ = os.Setenv("FITRATE_INGEST_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("FITRATE_ADDR")
				_ = os.Unsetenv("FITRATE_QUEUE_TTL_SECONDS")
				_ = os.Unsetenv("FITRATE_INGEST_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueTTLSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.IngestWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default config", func() {
				svc := app.New(nil)
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom config", func() {
				cfg := config.New()
				cfg.IngestWorkers = 8
				cfg.GhostPoolSize = 50
				svc := app.New(cfg)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New(nil, app.WithStore(kvstore.NewMemory()))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc.Matchmaking(), svc.Leaderboard(), svc.Wars(), svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should run until its context expires", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New(nil, app.WithStore(kvstore.NewMemory()))
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should run until its context expires", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			svc := app.New(nil, app.WithStore(kvstore.NewMemory()))

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			svc := app.New(nil, app.WithStore(kvstore.NewMemory()))
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then all components should work together", func() {
				scheduler, err := startScheduler(ctx, svc)
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = scheduler.Shutdown() }()

				mux := http.NewServeMux()
				server := api.NewServer(svc.Matchmaking(), svc.Leaderboard(), svc.Wars(), svc)
				server.Register(ctx, mux)
				swagger.Register(ctx, mux)

				convey.So(server, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("FITRATE_ADDR", "")
			defer func() { _ = os.Unsetenv("FITRATE_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing a non-positive queue TTL", func() {
			_ = os.Setenv("FITRATE_QUEUE_TTL_SECONDS", "0")
			defer func() { _ = os.Unsetenv("FITRATE_QUEUE_TTL_SECONDS") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationConcurrency(t *testing.T) {
	convey.Convey("Given main application concurrency", t, func() {
		convey.Convey("When creating components from multiple goroutines", func() {
			numGoroutines := 10
			done := make(chan bool, numGoroutines)

			for i := 0; i < numGoroutines; i++ {
				go func(id int) {
					defer func() {
						if r := recover(); r != nil {
							t.Errorf("Goroutine %d panicked: %v", id, r)
						}
						done <- true
					}()

					svc := app.New(nil, app.WithStore(kvstore.NewMemory()))
					if svc == nil {
						t.Errorf("Goroutine %d: service creation failed", id)
						return
					}

					registry := prometheus.NewRegistry()
					if metrics.NewManager(metrics.WithPrometheusRegistry(registry)) == nil {
						t.Errorf("Goroutine %d: metrics manager creation failed", id)
					}
				}(i)
			}

			for i := 0; i < numGoroutines; i++ {
				<-done
			}

			convey.Convey("Then all components should be created successfully", func() {
				convey.So(true, convey.ShouldBeTrue)
			})
		})
	})
}
