// Package rig evaluates a decoded DNA rig at one level of detail: GUI
// controls are mapped to raw controls, PSD outputs are derived from them and
// the resulting control vector drives blend-shape weights, animated-map
// intensities and joint attribute deltas.
package rig

import (
	"errors"
	"fmt"

	"github.com/Faultbox/rigdna/pkg/conditional"
	"github.com/Faultbox/rigdna/pkg/dna"
)

// ErrLODOutOfRange is returned when the requested LOD is not in the asset.
var ErrLODOutOfRange = errors.New("rig: LOD out of range")

// Instance holds the evaluation state of one rig. It is not safe for
// concurrent use; create one instance per goroutine.
type Instance struct {
	lod uint16

	guiToRaw     *conditional.Table
	psd          *conditional.PSD
	blendShapes  *conditional.Table
	animatedMaps *conditional.Table
	bsRows       int
	amRows       int
	joints       []jointGroup

	gui      []float32
	controls []float32 // raw controls followed by PSD outputs
	rawCount int
	guiDirty bool

	blendShapeWeights []float32
	animatedMapValues []float32
	jointOutputs      []float32
}

type jointGroup struct {
	inputs  []uint16
	outputs []uint16
	values  []float32
}

func rowsAt(lods []uint16, lod uint16, total int) int {
	if len(lods) == 0 {
		return total
	}
	if int(lod) >= len(lods) {
		return 0
	}
	return min(int(lods[lod]), total)
}

func newTable(name string, t *dna.ConditionalTableData) (*conditional.Table, error) {
	table, err := conditional.New(conditional.Data(*t))
	if err != nil {
		return nil, fmt.Errorf("%s table: %w", name, err)
	}
	return table, nil
}

// New prepares an instance evaluating a at lod. The asset must include the
// behavior layer and stay alive while the instance is used.
func New(a *dna.RigAsset, lod uint16) (*Instance, error) {
	if count := a.LODCount(); count > 0 && lod >= count {
		return nil, fmt.Errorf("%w: %d of %d", ErrLODOutOfRange, lod, count)
	}

	b := &a.Behavior
	r := &Instance{lod: lod}

	var err error
	if r.guiToRaw, err = newTable("gui to raw", &b.Controls.GUIToRaw); err != nil {
		return nil, err
	}
	if r.blendShapes, err = newTable("blend shape", &b.BlendShapeChannels.Table); err != nil {
		return nil, err
	}
	if r.animatedMaps, err = newTable("animated map", &b.AnimatedMaps.Table); err != nil {
		return nil, err
	}

	r.rawCount = max(a.RawControlCount(), int(b.Controls.GUIToRaw.OutputCount))
	psd := &b.Controls.PSD
	r.psd, err = conditional.NewPSD(psd.Rows, psd.Columns, psd.Values, r.rawCount, int(psd.Count))
	if err != nil {
		return nil, fmt.Errorf("psd: %w", err)
	}

	r.bsRows = rowsAt(b.BlendShapeChannels.LODs, lod, r.blendShapes.Len())
	r.amRows = rowsAt(b.AnimatedMaps.LODs, lod, r.animatedMaps.Len())

	for _, g := range b.Joints.Groups {
		rows := rowsAt(g.LODs, lod, len(g.OutputIndices))
		if len(g.Values) < rows*len(g.InputIndices) {
			return nil, fmt.Errorf("joint group: %d values for %d rows of %d inputs",
				len(g.Values), rows, len(g.InputIndices))
		}
		r.joints = append(r.joints, jointGroup{
			inputs:  g.InputIndices,
			outputs: g.OutputIndices[:rows],
			values:  g.Values[:rows*len(g.InputIndices)],
		})
	}

	r.gui = make([]float32, max(a.GUIControlCount(), int(b.Controls.GUIToRaw.InputCount)))
	r.controls = make([]float32, r.rawCount+r.psd.Count())
	r.blendShapeWeights = make([]float32, max(a.BlendShapeChannelCount(), r.blendShapes.OutputCount()))
	r.animatedMapValues = make([]float32, max(a.AnimatedMapCount(), r.animatedMaps.OutputCount()))
	r.jointOutputs = make([]float32, b.Joints.RowCount)
	return r, nil
}

// LOD returns the evaluated level of detail.
func (r *Instance) LOD() uint16 {
	return r.lod
}

// SetGUIControl sets GUI control i. Out-of-range indices are ignored.
func (r *Instance) SetGUIControl(i int, v float32) {
	if i >= 0 && i < len(r.gui) {
		r.gui[i] = v
		r.guiDirty = true
	}
}

// SetRawControl sets raw control i directly. The value is overwritten by the
// next Evaluate that follows a SetGUIControl.
func (r *Instance) SetRawControl(i int, v float32) {
	if i >= 0 && i < r.rawCount {
		r.controls[i] = v
	}
}

// Evaluate recomputes every output from the current controls.
func (r *Instance) Evaluate() {
	if r.guiDirty {
		r.guiToRaw.Calculate(r.gui, r.controls[:r.rawCount])
		r.guiDirty = false
	}
	r.psd.Calculate(r.controls)
	r.blendShapes.CalculateChunk(r.controls, r.blendShapeWeights, r.bsRows)
	r.animatedMaps.CalculateChunk(r.controls, r.animatedMapValues, r.amRows)
	r.evaluateJoints()
}

// evaluateJoints multiplies each group's row-major matrix with the control
// values of its input columns.
func (r *Instance) evaluateJoints() {
	clear(r.jointOutputs)
	for _, g := range r.joints {
		cols := len(g.inputs)
		for row, out := range g.outputs {
			if int(out) >= len(r.jointOutputs) {
				continue
			}
			var sum float32
			for c, in := range g.inputs {
				if int(in) < len(r.controls) {
					sum += g.values[row*cols+c] * r.controls[in]
				}
			}
			r.jointOutputs[out] = sum
		}
	}
}

// RawControls returns the raw control values followed by the PSD outputs.
func (r *Instance) RawControls() []float32 {
	return r.controls
}

// BlendShapeWeights returns the blend-shape channel weights.
func (r *Instance) BlendShapeWeights() []float32 {
	return r.blendShapeWeights
}

// AnimatedMapOutputs returns the animated map intensities.
func (r *Instance) AnimatedMapOutputs() []float32 {
	return r.animatedMapValues
}

// JointOutputs returns the joint attribute deltas, indexed by joint
// attribute (nine per joint).
func (r *Instance) JointOutputs() []float32 {
	return r.jointOutputs
}
