package main

import (
	"github.com/CiZaii/ai-middle-platform/internal/server"
	"github.com/CiZaii/ai-middle-platform/internal/util"
	"github.com/CiZaii/ai-middle-platform/pkg/logger"
)

func main() {
	util.LoadEnv()

	logger.Init(util.GetEnvBool("DEBUG", false))

	server.Init()
}
