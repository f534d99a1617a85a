//go:build integration
// +build integration

package integration

import (
	"context"
	"os/exec"
	"testing"
)

func compose(t *testing.T, ctx context.Context, action, service string) {
	t.Helper()

	cmd := exec.CommandContext(ctx, "docker", "compose", action, service)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("docker compose %s %s failed: %v\n%s", action, service, err, string(out))
	}
}
