package provision

import (
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv1 "k8s.io/api/autoscaling/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

func labels(app string) map[string]string {
	return map[string]string{"app": app}
}

func int32Ptr(v int32) *int32 { return &v }

// ChromeDeployment returns the browser grid deployment.
func ChromeDeployment(s Spec) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ChromeName,
			Namespace: s.Namespace,
			Labels:    labels(ChromeName),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: int32Ptr(int32(ClampReplicas(s.Replicas))),
			Selector: &metav1.LabelSelector{MatchLabels: labels(ChromeName)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels(ChromeName)},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:  ChromeName,
						Image: s.ChromeImage,
						Ports: []corev1.ContainerPort{{ContainerPort: GridPort}},
						Resources: corev1.ResourceRequirements{
							Requests: corev1.ResourceList{
								corev1.ResourceCPU:    resource.MustParse("500m"),
								corev1.ResourceMemory: resource.MustParse("512Mi"),
							},
							Limits: corev1.ResourceList{
								corev1.ResourceCPU:    resource.MustParse("1000m"),
								corev1.ResourceMemory: resource.MustParse("1Gi"),
							},
						},
					}},
				},
			},
		},
	}
}

// ChromeService exposes the grid port inside the cluster.
func ChromeService(s Spec) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ChromeName,
			Namespace: s.Namespace,
		},
		Spec: corev1.ServiceSpec{
			Selector: labels(ChromeName),
			Ports: []corev1.ServicePort{{
				Protocol:   corev1.ProtocolTCP,
				Port:       GridPort,
				TargetPort: intstr.FromInt32(GridPort),
			}},
		},
	}
}

// ChromeAutoscaler scales the grid deployment on CPU.
func ChromeAutoscaler(s Spec) *autoscalingv1.HorizontalPodAutoscaler {
	return &autoscalingv1.HorizontalPodAutoscaler{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ChromeHPAName,
			Namespace: s.Namespace,
		},
		Spec: autoscalingv1.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv1.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       ChromeName,
			},
			MinReplicas:                    int32Ptr(MinReplicas),
			MaxReplicas:                    MaxReplicas,
			TargetCPUUtilizationPercentage: int32Ptr(s.TargetCPU),
		},
	}
}

// RunnerDeployment runs the acceptance suite against the grid.
func RunnerDeployment(s Spec) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      RunnerName,
			Namespace: s.Namespace,
			Labels:    labels(RunnerName),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: int32Ptr(1),
			Selector: &metav1.LabelSelector{MatchLabels: labels(RunnerName)},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels(RunnerName)},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{{
						Name:  RunnerName,
						Image: s.RunnerImage,
						Env: []corev1.EnvVar{{
							Name:  "SELENIUM_REMOTE_URL",
							Value: s.GridURL(),
						}},
					}},
				},
			},
		},
	}
}
