package provision

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"digital.vasic.webaccept/pkg/logging"
)

// Provisioner creates the grid and runner resources.
type Provisioner struct {
	client kubernetes.Interface
	logger logging.Logger
}

// New creates a Provisioner. A nil logger discards output.
func New(client kubernetes.Interface, logger logging.Logger) *Provisioner {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	return &Provisioner{client: client, logger: logger}
}

// Provision creates the Chrome deployment, its service, the
// autoscaler and the runner deployment, in that order. It stops at
// the first failure; resources already created are left in place.
func (p *Provisioner) Provision(ctx context.Context, s Spec) error {
	s.Replicas = ClampReplicas(s.Replicas)
	logger := p.logger.WithFields(
		logging.StringField("namespace", s.Namespace),
		logging.IntField("replicas", s.Replicas),
	)

	steps := []struct {
		kind   string
		name   string
		create func() error
	}{
		{"deployment", ChromeName, func() error {
			_, err := p.client.AppsV1().Deployments(s.Namespace).
				Create(ctx, ChromeDeployment(s), metav1.CreateOptions{})
			return err
		}},
		{"service", ChromeName, func() error {
			_, err := p.client.CoreV1().Services(s.Namespace).
				Create(ctx, ChromeService(s), metav1.CreateOptions{})
			return err
		}},
		{"autoscaler", ChromeHPAName, func() error {
			_, err := p.client.AutoscalingV1().HorizontalPodAutoscalers(s.Namespace).
				Create(ctx, ChromeAutoscaler(s), metav1.CreateOptions{})
			return err
		}},
		{"deployment", RunnerName, func() error {
			_, err := p.client.AppsV1().Deployments(s.Namespace).
				Create(ctx, RunnerDeployment(s), metav1.CreateOptions{})
			return err
		}},
	}

	for _, st := range steps {
		if err := st.create(); err != nil {
			logger.Error("failed to create resource",
				logging.StringField("kind", st.kind),
				logging.StringField("name", st.name),
				logging.ErrorField(err),
			)
			return fmt.Errorf("create %s %s: %w", st.kind, st.name, err)
		}
		logger.Info("resource created",
			logging.StringField("kind", st.kind),
			logging.StringField("name", st.name),
		)
	}
	return nil
}
