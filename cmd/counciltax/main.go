package main

import (
	"context"
	"os"

	"counciltax/cmd/counciltax/commands"
	"counciltax/lib/serviceutil"
	"counciltax/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "counciltax")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	err = commands.ExecuteContext(ctx)
	shutdownErr := tel.Shutdown(context.Background())
	if shutdownErr != nil {
		serviceutil.Fatal("failed to flush telemetry", shutdownErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
