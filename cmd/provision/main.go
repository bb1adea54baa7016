// Command provision creates the Chrome grid and the acceptance runner
// deployment in a Kubernetes cluster. The grid size comes from
// -replicas or NODE_COUNT and is clamped to 1..5.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"digital.vasic.webaccept/pkg/env"
	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/provision"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	kubeconfig := fs.String("kubeconfig", "", "kubeconfig path (default: in-cluster, then ~/.kube/config)")
	namespace := fs.String("namespace", "", "target namespace (default: detected, then \"default\")")
	replicas := fs.Int("replicas", 0, "Chrome replicas, 1..5 (default: NODE_COUNT or 1)")
	chromeImage := fs.String("chrome-image", provision.DefaultChromeImage, "browser grid image")
	runnerImage := fs.String("runner-image", provision.DefaultRunnerImage, "acceptance runner image")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger := logging.NewConsoleLoggerTo(os.Stderr, *verbose)

	spec := provision.DefaultSpec()
	spec.Namespace = provision.DetectNamespace(*namespace)
	spec.ChromeImage = *chromeImage
	spec.RunnerImage = *runnerImage
	if *replicas > 0 {
		spec.Replicas = provision.ClampReplicas(*replicas)
	} else {
		n, err := provision.ReplicasFromEnv(env.NewLoader())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		spec.Replicas = n
	}

	client, err := provision.BuildClient(*kubeconfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := provision.New(client, logger).Provision(ctx, spec); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
	fmt.Printf("Created %s deployment (%d replicas), service, autoscaler and %s deployment in %s\n",
		provision.ChromeName, spec.Replicas, provision.RunnerName, spec.Namespace)
}
