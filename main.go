package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/gocontact/internal/app"
)

const shutdownTimeout = 10 * time.Second

// @title           GoContact API
// @version         1.0
// @description     Email OTP issuance and verification guarding a contact form.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
func main() {
	gc := app.New()
	<-gc.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	gc.Stop(ctx)
}
