/*
This is an example application that uses the engine package to drive a
two-pass frame graph over a window.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prismengine/prism/engine"
	"github.com/prismengine/prism/testbed"
)

const configPath = "prism.toml"

func main() {
	app, err := testbed.NewTestApp()
	if err != nil {
		panic(err)
	}

	// An optional config file next to the binary overrides the testbed
	// defaults, with the log level hot-reloaded on change.
	if _, err := os.Stat(configPath); err == nil {
		config, err := engine.LoadConfig(configPath)
		if err != nil {
			panic(err)
		}
		app.ApplicationConfig = config

		watcher, err := engine.WatchConfig(configPath)
		if err != nil {
			panic(err)
		}
		defer watcher.Close()
	}

	e, err := engine.New(app.App)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	go func() {
		<-sigCh
		_ = e.Shutdown()
		os.Exit(0)
	}()

	if err := e.Run(); err != nil {
		panic(err)
	}

	if err := e.Shutdown(); err != nil {
		panic(err)
	}
}
