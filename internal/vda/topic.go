//
//
package vda

import (
	"fmt"
	"strings"
)

// DefaultNamespace is the first topic level when none is configured.
const DefaultNamespace = "vda5050"

// ParseTopic splits a routing key of the form
// /{namespace}/{manufacturer}/{serial}/{kind} into its parts.
// Leading and trailing slashes are tolerated; anything else is an error.
func ParseTopic(topic string) (namespace string, id Identity, kind Kind, err error) {
	parts := make([]string, 0, 4)
	for _, p := range strings.Split(topic, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 4 {
		return "", Identity{}, "", fmt.Errorf("topic %q: expected /namespace/manufacturer/serial/kind", topic)
	}

	kind, err = ParseKind(parts[3])
	if err != nil {
		return "", Identity{}, "", fmt.Errorf("topic %q: %w", topic, err)
	}

	return parts[0], Identity{Manufacturer: parts[1], Serial: parts[2]}, kind, nil
}

// Topic builds the routing key for a telemetry message.
func Topic(namespace string, id Identity, kind Kind) string {
	return fmt.Sprintf("/%s/%s/%s/%s", namespace, id.Manufacturer, id.Serial, kind)
}

// CommandTopic builds the routing key the gateway publishes commands on.
func CommandTopic(namespace string, id Identity) string {
	return fmt.Sprintf("/%s/%s/%s/command", namespace, id.Manufacturer, id.Serial)
}

// SubscriptionFilter returns the wildcard filter covering every topic
// under the namespace.
func SubscriptionFilter(namespace string) string {
	return fmt.Sprintf("/%s/#", namespace)
}
