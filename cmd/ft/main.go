package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/ft/cmd/ft/app"
	"github.com/autopeer-io/ft/internal/pkg/quit"
	"github.com/autopeer-io/ft/pkg/log"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	ctx := genericapiserver.SetupSignalContext()
	quit.Install(os.Stderr, os.Exit)

	os.Exit(app.Run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
