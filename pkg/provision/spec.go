// Package provision creates the Kubernetes resources that host a
// browser grid and the acceptance runner: a Chrome deployment with its
// service and autoscaler, and a runner deployment pointed at the grid.
package provision

import (
	"fmt"

	"digital.vasic.webaccept/pkg/env"
)

// Replica bounds for the Chrome deployment.
const (
	MinReplicas = 1
	MaxReplicas = 5
)

// Resource names.
const (
	ChromeName    = "chrome"
	ChromeHPAName = "chrome-hpa"
	RunnerName    = "selenium-test"
)

// Default images and the grid port.
const (
	DefaultChromeImage = "selenium/standalone-chrome:latest"
	DefaultRunnerImage = "mcmusty212/selenium-test:1.0.0"
	GridPort           = 4444
)

// Spec describes what Provision creates.
type Spec struct {
	Namespace   string
	Replicas    int
	ChromeImage string
	RunnerImage string
	// TargetCPU is the autoscaler's CPU utilization target in percent.
	TargetCPU int32
}

// DefaultSpec returns the spec for a single Chrome node in the
// default namespace.
func DefaultSpec() Spec {
	return Spec{
		Namespace:   "default",
		Replicas:    MinReplicas,
		ChromeImage: DefaultChromeImage,
		RunnerImage: DefaultRunnerImage,
		TargetCPU:   50,
	}
}

// GridURL is the WebDriver endpoint the runner deployment uses.
func (s Spec) GridURL() string {
	return fmt.Sprintf("http://%s:%d/wd/hub", ChromeName, GridPort)
}

// ClampReplicas bounds n to [MinReplicas, MaxReplicas].
func ClampReplicas(n int) int {
	if n < MinReplicas {
		return MinReplicas
	}
	if n > MaxReplicas {
		return MaxReplicas
	}
	return n
}

// ReplicasFromEnv reads NODE_COUNT and clamps it. Unset yields
// MinReplicas.
func ReplicasFromEnv(l env.Loader) (int, error) {
	n, err := env.Int(l, "NODE_COUNT", MinReplicas)
	if err != nil {
		return MinReplicas, fmt.Errorf("node count: %w", err)
	}
	return ClampReplicas(n), nil
}
