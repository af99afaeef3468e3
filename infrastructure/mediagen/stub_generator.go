package mediagen

import (
	"context"
	"fmt"
	"time"

	"github.com/zach-sndr/twitcanva/application/ports"
)

// StubGenerator fabricates result URLs locally after a short delay.
// Used when no provider endpoint is configured, and in tests.
type StubGenerator struct {
	// Delay before each result. Zero means respond immediately.
	Delay time.Duration
}

func (g *StubGenerator) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return fmt.Sprintf("stub://%s/%s", req.NodeType.String(), req.NodeID.String()), nil
}
