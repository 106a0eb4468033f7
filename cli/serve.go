package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"schema-generator/config"
	"schema-generator/controllers"
	"schema-generator/routes"
)

// Serve runs the HTTP API until ctx is cancelled and then shuts down
// gracefully. Without an API key the generation endpoint answers 503 while
// the offline endpoints keep working.
func Serve(ctx context.Context, cfg *config.Config, addr string) error {
	var runner controllers.SchemaRunner
	gen, err := NewGenerator(cfg, nil)
	if err != nil {
		log.Printf("⚠️  Schema generation disabled: %v", err)
	} else {
		runner = gen
	}

	e := routes.NewServer(
		controllers.NewHealthController(runner != nil),
		controllers.NewSchemaController(runner, cfg.GetRunTimeout()),
		cfg.Server.RequestsPerSecond,
	)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s\n", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server gracefully ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Println("Server Shutdown:", err)
	}
	log.Println("Server exiting")
	return nil
}
