// Package infra contains technical adapters such as the MQTT advice
// notifier, metrics sinks and the audit stores. These packages depend
// only on the interfaces defined in the core packages.
package infra
