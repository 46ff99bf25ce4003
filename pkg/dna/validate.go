package dna

// validateDefinition checks the parallel arrays and the joint hierarchy of
// a decoded definition.
func validateDefinition(def *Definition) error {
	m := &def.MeshBlendShapeChannelMapping
	if len(m.MeshIndices) != len(m.BlendShapeChannelIndices) {
		return invalidData("mesh blend shape channel mapping: %d meshes, %d channels",
			len(m.MeshIndices), len(m.BlendShapeChannelIndices))
	}
	for i, p := range def.JointHierarchy {
		if p != JointRootParent && int(p) >= i {
			return invalidData("joint %d: parent %d is not an earlier joint", i, p)
		}
	}
	if err := validateVectors("neutral joint translations", &def.NeutralJointTranslations); err != nil {
		return err
	}
	return validateVectors("neutral joint rotations", &def.NeutralJointRotations)
}

func validateVectors(name string, v *Vector3s) error {
	if len(v.Xs) != len(v.Ys) || len(v.Xs) != len(v.Zs) {
		return invalidData("%s: axis lengths %d/%d/%d", name, len(v.Xs), len(v.Ys), len(v.Zs))
	}
	return nil
}

// validateBehavior checks that every table's parallel arrays agree.
func validateBehavior(b *Behavior) error {
	if err := validateTable("gui to raw", &b.Controls.GUIToRaw); err != nil {
		return err
	}
	psd := &b.Controls.PSD
	if len(psd.Rows) != len(psd.Columns) || len(psd.Rows) != len(psd.Values) {
		return invalidData("psd: %d rows, %d columns, %d values",
			len(psd.Rows), len(psd.Columns), len(psd.Values))
	}
	for i := range b.Joints.Groups {
		g := &b.Joints.Groups[i]
		if want := len(g.OutputIndices) * len(g.InputIndices); len(g.Values) != want {
			return invalidData("joint group %d: %d values for %d outputs x %d inputs",
				i, len(g.Values), len(g.OutputIndices), len(g.InputIndices))
		}
	}
	if err := validateTable("blend shape channel", &b.BlendShapeChannels.Table); err != nil {
		return err
	}
	return validateTable("animated map", &b.AnimatedMaps.Table)
}

func validateTable(name string, t *ConditionalTableData) error {
	n := len(t.InputIndices)
	if len(t.OutputIndices) != n || len(t.FromValues) != n || len(t.ToValues) != n ||
		len(t.SlopeValues) != n || len(t.CutValues) != n {
		return invalidData("%s table: lengths input=%d output=%d from=%d to=%d slope=%d cut=%d",
			name, n, len(t.OutputIndices), len(t.FromValues), len(t.ToValues),
			len(t.SlopeValues), len(t.CutValues))
	}
	return nil
}
