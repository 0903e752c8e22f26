package inject

import (
	"go.viam.com/calibeval/referenceframe"
	"go.viam.com/calibeval/spatialmath"
)

// ChainComposer is an injected chain composer.
type ChainComposer struct {
	referenceframe.ChainComposer
	ComposeChainFunc func(chain referenceframe.Chain, transforms map[string]spatialmath.Pose) (spatialmath.Pose, error)
}

// ComposeChain calls the injected ComposeChain or the real version.
func (c *ChainComposer) ComposeChain(chain referenceframe.Chain, transforms map[string]spatialmath.Pose) (spatialmath.Pose, error) {
	if c.ComposeChainFunc == nil {
		return c.ChainComposer.ComposeChain(chain, transforms)
	}
	return c.ComposeChainFunc(chain, transforms)
}
