package jobtracker

// onDiscoveryEvent handles a NodeLeft/NodeFailed event. Only the update
// leader scans all replicas of JobMetadata — iterating over local entries is
// correct because the metadata cache is assumed replicated to every node
// (§6 Discovery).
func (t *Tracker) onDiscoveryEvent(evt DiscoveryEvent) {
	t.logger.Debug("processing discovery event", "node_id", string(evt.NodeId))

	live := make(map[NodeId]struct{}, len(evt.LiveNodes))
	for _, n := range evt.LiveNodes {
		live[n] = struct{}{}
	}

	for _, meta := range t.store.Values() {
		if !isUpdateLeader(meta, evt.LiveNodes, t.localNodeId) {
			continue
		}

		if meta.Phase != PhaseMap && meta.Phase != PhaseReduce {
			continue
		}

		var cancelSplits []InputSplit
		for _, node := range meta.Plan.MapperNodeIds() {
			if _, ok := live[node]; ok {
				continue
			}
			cancelSplits = append(cancelSplits, meta.Plan.Mappers(node)...)
		}

		var cancelReducers []int
		for _, node := range meta.Plan.ReducerNodeIds() {
			if _, ok := live[node]; ok {
				continue
			}
			cancelReducers = append(cancelReducers, meta.Plan.Reducers(node)...)
		}

		if len(cancelSplits) > 0 || len(cancelReducers) > 0 {
			t.store.TransformAsync(meta.JobId, CancelJob{
				Splits:   cancelSplits,
				Reducers: cancelReducers,
				Err:      NodeLossFailCause(),
			})
		}
	}
}
