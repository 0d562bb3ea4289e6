// Package main serves the calculator tools over the Model Context Protocol.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/lemonberrylabs/calculator/pkg/config"
	calcmcp "github.com/lemonberrylabs/calculator/pkg/mcp"
)

const version = "0.1.0"

func main() {
	var (
		portFlag    = flag.Int("port", 0, "TCP port to listen on (0 for stdio)")
		debugFlag   = flag.Bool("debug", false, "Enable debug logging")
		versionFlag = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *versionFlag {
		fmt.Println("calc-mcp v" + version)
		os.Exit(0)
	}

	// stdout carries the protocol in stdio mode, so logs go to stderr.
	logCfg := config.LogConfig{Level: "info", Format: "text"}
	if *debugFlag {
		logCfg.Level = "debug"
	}
	logger := logCfg.NewLogger(os.Stderr)

	s := calcmcp.NewServer("calc-mcp", version, logger)

	if *portFlag == 0 {
		logger.Debug("serving MCP over stdio")
		if err := server.ServeStdio(s); err != nil {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
		return
	}

	httpServer := server.NewStreamableHTTPServer(s)
	logger.Info("serving MCP over HTTP", "port", *portFlag)
	if err := httpServer.Start(fmt.Sprintf(":%d", *portFlag)); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
