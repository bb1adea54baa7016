package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const serviceAccountNamespace = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// BuildClient returns a clientset. An explicit kubeconfig wins; else
// the in-cluster config is tried, then ~/.kube/config.
func BuildClient(kubeconfig string) (*kubernetes.Clientset, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		cfg, err = rest.InClusterConfig()
		if err != nil {
			home, herr := os.UserHomeDir()
			if herr != nil {
				return nil, fmt.Errorf("in-cluster config: %w", err)
			}
			cfg, err = clientcmd.BuildConfigFromFlags("", filepath.Join(home, ".kube", "config"))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("kube config: %w", err)
	}

	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("kube client: %w", err)
	}
	return client, nil
}

// DetectNamespace returns explicit when set, then the service account
// namespace, then POD_NAMESPACE, then "default".
func DetectNamespace(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if data, err := os.ReadFile(serviceAccountNamespace); err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			return ns
		}
	}
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return ns
	}
	return "default"
}
