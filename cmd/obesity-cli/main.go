package main

import (
	"os"

	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
)

func main() {
	logger.Init()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
