package stt

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
)

// waitForReady blocks until conn is Ready, shuts down, or ctx ends.
func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for state := conn.GetState(); state != connectivity.Ready; state = conn.GetState() {
		if state == connectivity.Shutdown {
			return errors.New("stt connection entered shutdown state")
		}
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("stt connection stuck in state %s: %w", state, ctx.Err())
		}
	}
	return nil
}
