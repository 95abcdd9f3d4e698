package streams

import "fmt"

// TopicClient provisions sink destinations. EnsureExists must be idempotent:
// creating a topic that already exists with compatible settings succeeds,
// incompatible settings fail with a ProvisioningError.
type TopicClient interface {
	EnsureExists(name string, partitions int, replicationFactor int) error
}

// ProvisioningError means a sink destination couldn't be created or verified.
// It is fatal to the sink operation and surfaces before any write.
type ProvisioningError struct {
	Topic  string
	Reason string
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("couldn't provision topic %s: %s", e.Topic, e.Reason)
}
