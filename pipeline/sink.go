package pipeline

import (
	"go.viam.com/slopescan/corridor"
	"go.viam.com/slopescan/heightfield"
)

// Sink is the visualization collaborator. Implementations must not call back into the
// Orchestrator from these methods.
type Sink interface {
	corridor.Sink
	PublishHeightField(p *heightfield.Publication) error
	RetractHeightField() error
}
