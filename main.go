package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/reusedev/prompt-hub/config"
	"github.com/reusedev/prompt-hub/internal/modules/gallery"
	"github.com/reusedev/prompt-hub/internal/modules/kvstore"
	"github.com/reusedev/prompt-hub/internal/modules/logs"
	"github.com/reusedev/prompt-hub/internal/modules/prompt"
	"github.com/reusedev/prompt-hub/internal/modules/task"
	"github.com/reusedev/prompt-hub/internal/service/http"
	"github.com/reusedev/prompt-hub/internal/service/http/handler"
	"github.com/reusedev/prompt-hub/tools"
)

var (
	httpPort   string
	configPath string
)

func init() {
	flag.StringVar(&httpPort, "http-port", ":8632", "listen http port")
	flag.StringVar(&configPath, "config", "config.yml", "config file path")
}

func main() {
	flag.Parse()
	config.Init(configPath)
	logs.InitLogger()

	ctx, cancel := context.WithCancel(context.Background())

	kv := tools.PanicOnError(kvstore.NewFileStore(config.GConfig.DataDir))
	taskStore := tools.PanicOnError(task.NewStore(kv))
	promptManager := tools.PanicOnError(prompt.NewManager(kv))

	engine := task.NewEngine(ctx, taskStore, kv)
	if config.GConfig.GalleryEnabled {
		archiver := gallery.NewArchiver(config.GConfig.DataDir)
		engine.OnCompleted = func(t *task.Task) {
			archiver.Archive(t.ID, t.ResultImageURL)
		}
	}
	// Pick polling back up for jobs that were in flight when the last
	// session ended.
	engine.Resume()

	handler.Init(engine, promptManager)

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	go func(ch chan os.Signal) {
		<-ch
		engine.Stop()
		cancel()
		os.Exit(0)
	}(osSignal)
	http.Serve(httpPort)
}
