package transform

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/calibeval/spatialmath"
)

// CamPose stores the 3x4 pose matrix as well as the 3D Rotation and Translation matrices.
type CamPose struct {
	PoseMat     *mat.Dense
	Rotation    *mat.Dense
	Translation *mat.Dense
}

// NewCamPoseFromMat creates a pointer to a Camera pose from a 3x4 pose dense matrix.
func NewCamPoseFromMat(pose *mat.Dense) *CamPose {
	U3 := pose.ColView(3)
	t := mat.NewDense(3, 1, []float64{U3.AtVec(0), U3.AtVec(1), U3.AtVec(2)})
	rot := mat.DenseCopyOf(pose.Slice(0, 3, 0, 3))
	return &CamPose{
		PoseMat:     pose,
		Rotation:    rot,
		Translation: t,
	}
}

// NewCamPoseFromPose builds the 3x4 matrix form of a pose.
func NewCamPoseFromPose(p spatialmath.Pose) *CamPose {
	m := spatialmath.PoseToMatrix(p)
	return NewCamPoseFromMat(mat.DenseCopyOf(m.Slice(0, 3, 0, 4)))
}

// Pose creates a spatialmath.Pose from a CamPose.
func (cp *CamPose) Pose() (spatialmath.Pose, error) {
	translation := r3.Vector{X: cp.Translation.At(0, 0), Y: cp.Translation.At(1, 0), Z: cp.Translation.At(2, 0)}
	return spatialmath.NewPoseFromTranslationRotation(translation, cp.Rotation)
}

// PlanarBasis reduces the pose to the 3x3 homography basis of the z=0 plane, the first two rotation
// columns followed by the translation.
func (cp *CamPose) PlanarBasis() *mat.Dense {
	basis := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		basis.Set(i, 0, cp.Rotation.At(i, 0))
		basis.Set(i, 1, cp.Rotation.At(i, 1))
		basis.Set(i, 2, cp.Translation.At(i, 0))
	}
	return basis
}

// poseFromPlanarHomography recovers the 3x4 pose of the z=0 plane from a homography that maps plane
// coordinates to normalized image coordinates, H = s [r1 r2 t]. The sign is chosen so the plane lies in
// front of the camera.
func poseFromPlanarHomography(h *Homography) (*mat.Dense, error) {
	h1 := r3.Vector{X: h.At(0, 0), Y: h.At(1, 0), Z: h.At(2, 0)}
	h2 := r3.Vector{X: h.At(0, 1), Y: h.At(1, 1), Z: h.At(2, 1)}
	h3 := r3.Vector{X: h.At(0, 2), Y: h.At(1, 2), Z: h.At(2, 2)}

	norm := (h1.Norm() + h2.Norm()) / 2
	if norm == 0 {
		return nil, errors.New("homography has zero rotation columns")
	}
	lambda := 1 / norm
	if h3.Z < 0 {
		lambda = -lambda
	}
	r1 := h1.Mul(lambda)
	r2 := h2.Mul(lambda)
	t := h3.Mul(lambda)
	r3v := r1.Cross(r2)

	approx := mat.NewDense(3, 3, []float64{
		r1.X, r2.X, r3v.X,
		r1.Y, r2.Y, r3v.Y,
		r1.Z, r2.Z, r3v.Z,
	})
	rot := nearestRotation(approx)
	if rot == nil {
		return nil, errors.New("failed to orthonormalize rotation")
	}

	var pose mat.Dense
	pose.Augment(rot, mat.NewDense(3, 1, []float64{t.X, t.Y, t.Z}))
	return &pose, nil
}
