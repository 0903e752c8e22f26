// Package referenceframe composes the rigid transforms that link a sensor to the root of its rig.
// Useful for if you have a camera mounted on a bracket mounted on a base, and need the camera's pose in
// the base frame for a particular capture.
package referenceframe

import (
	"github.com/pkg/errors"

	"go.viam.com/calibeval/spatialmath"
)

// Edge is one link of a kinematic chain, the transform from Parent to Child.
type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Key is the name under which the edge's transform is stored in a collection.
func (e Edge) Key() string {
	return EdgeKey(e.Parent, e.Child)
}

// EdgeKey names the transform from parent to child.
func EdgeKey(parent, child string) string {
	return parent + "-" + child
}

// Chain is an ordered list of edges from the root of a rig down to a sensor.
type Chain []Edge

// Root returns the first parent in the chain.
func (c Chain) Root() string {
	if len(c) == 0 {
		return ""
	}
	return c[0].Parent
}

// Tip returns the last child in the chain.
func (c Chain) Tip() string {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1].Child
}

// ChainComposer returns the pose of a chain's tip expressed in its root frame.
type ChainComposer interface {
	ComposeChain(chain Chain, transforms map[string]spatialmath.Pose) (spatialmath.Pose, error)
}

// ChainComposerFunc adapts a plain function to the ChainComposer interface.
type ChainComposerFunc func(chain Chain, transforms map[string]spatialmath.Pose) (spatialmath.Pose, error)

// ComposeChain calls f.
func (f ChainComposerFunc) ComposeChain(chain Chain, transforms map[string]spatialmath.Pose) (spatialmath.Pose, error) {
	return f(chain, transforms)
}

// DefaultChainComposer multiplies the edge transforms in chain order.
var DefaultChainComposer ChainComposer = ChainComposerFunc(ComposeChain)

// ComposeChain multiplies the transforms named by the chain's edges, in order, giving root_T_tip.
// An empty chain is the root frame itself and composes to identity.
func ComposeChain(chain Chain, transforms map[string]spatialmath.Pose) (spatialmath.Pose, error) {
	result := spatialmath.NewZeroPose()
	for i, edge := range chain {
		if i > 0 && chain[i-1].Child != edge.Parent {
			return nil, errors.Errorf("chain is broken between %q and %q", chain[i-1].Child, edge.Parent)
		}
		tf, ok := transforms[edge.Key()]
		if !ok {
			return nil, NewMissingTransformError(edge.Key())
		}
		result = spatialmath.Compose(result, tf)
	}
	return result, nil
}

// RelativePose returns to_T_from given the poses of both frames in a shared root frame.
func RelativePose(rootTFrom, rootTTo spatialmath.Pose) spatialmath.Pose {
	return spatialmath.Compose(spatialmath.PoseInverse(rootTTo), rootTFrom)
}
