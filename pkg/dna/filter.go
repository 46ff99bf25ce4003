package dna

// LOD filtering renumbers a decoded asset so that LOD i of the result is the
// i-th selected LOD of the container.

func filterLODMapping(m *LODMapping, lods []uint16, name string) error {
	if len(m.LODs) == 0 {
		return nil
	}
	out := make([]uint16, len(lods))
	for i, l := range lods {
		if int(l) >= len(m.LODs) {
			return invalidData("%s LOD mapping has %d LODs, LOD %d requested", name, len(m.LODs), l)
		}
		out[i] = m.LODs[l]
	}
	m.LODs = out
	return nil
}

func filterDefinition(def *Definition, lods []uint16) error {
	mappings := []struct {
		m    *LODMapping
		name string
	}{
		{&def.JointLODs, "joint"},
		{&def.BlendShapeChannelLODs, "blend shape channel"},
		{&def.AnimatedMapLODs, "animated map"},
		{&def.MeshLODs, "mesh"},
	}
	for _, x := range mappings {
		if err := filterLODMapping(x.m, lods, x.name); err != nil {
			return err
		}
	}
	return nil
}

// selectRowCounts picks the row count of each selected LOD and returns the
// largest, which is the number of leading rows still needed.
func selectRowCounts(rows []uint16, lods []uint16, name string) ([]uint16, int, error) {
	if len(rows) == 0 {
		return rows, -1, nil
	}
	out := make([]uint16, len(lods))
	keep := 0
	for i, l := range lods {
		if int(l) >= len(rows) {
			return nil, 0, invalidData("%s has %d LOD row counts, LOD %d requested", name, len(rows), l)
		}
		out[i] = rows[l]
		keep = max(keep, int(rows[l]))
	}
	return out, keep, nil
}

func filterLODTable(t *LODTable, lods []uint16, name string) error {
	counts, keep, err := selectRowCounts(t.LODs, lods, name)
	if err != nil {
		return err
	}
	t.LODs = counts
	if keep >= 0 {
		t.Table.truncate(keep)
	}
	return nil
}

func filterBehavior(b *Behavior, lods []uint16) error {
	for i := range b.Joints.Groups {
		g := &b.Joints.Groups[i]
		counts, keep, err := selectRowCounts(g.LODs, lods, "joint group")
		if err != nil {
			return err
		}
		g.LODs = counts
		if keep < 0 || keep >= len(g.OutputIndices) {
			continue
		}
		g.OutputIndices = g.OutputIndices[:keep]
		if cells := keep * len(g.InputIndices); cells < len(g.Values) {
			g.Values = g.Values[:cells]
		}
	}
	if err := filterLODTable(&b.BlendShapeChannels, lods, "blend shape channel table"); err != nil {
		return err
	}
	return filterLODTable(&b.AnimatedMaps, lods, "animated map table")
}

// meshesForLODs returns the meshes referenced by any selected LOD, or nil
// when the mapping is empty and every mesh is kept.
func meshesForLODs(m *LODMapping, lods []uint16) map[int]bool {
	if len(m.LODs) == 0 {
		return nil
	}
	keep := make(map[int]bool)
	for _, l := range lods {
		for _, mesh := range m.indicesFor(l) {
			keep[int(mesh)] = true
		}
	}
	return keep
}
