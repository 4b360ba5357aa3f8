package jobtracker

import "sort"

// updateLeader picks the deterministic update leader for meta: the
// lowest-ordered currently-live node among the plan's mapper/reducer nodes
// plus the job's submitter (§4.5). It returns ("", false) if none of the
// eligible nodes are currently live.
func updateLeader(meta JobMetadata, liveNodes []NodeId) (NodeId, bool) {
	live := make(map[NodeId]struct{}, len(liveNodes))
	for _, n := range liveNodes {
		live[n] = struct{}{}
	}

	eligible := make(map[NodeId]struct{})
	for _, n := range meta.Plan.MapperNodeIds() {
		eligible[n] = struct{}{}
	}
	for _, n := range meta.Plan.ReducerNodeIds() {
		eligible[n] = struct{}{}
	}
	if meta.SubmitterNodeId != "" {
		eligible[meta.SubmitterNodeId] = struct{}{}
	}

	var candidates []NodeId
	for n := range eligible {
		if _, ok := live[n]; ok {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })
	return candidates[0], true
}

// isUpdateLeader reports whether localNode is the update leader for meta
// given the current live set.
func isUpdateLeader(meta JobMetadata, liveNodes []NodeId, localNode NodeId) bool {
	leader, ok := updateLeader(meta, liveNodes)
	return ok && leader == localNode
}
