// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"

	"github.com/namanag97/shannon-insight-sub002/services/insight/graph"
	"github.com/namanag97/shannon-insight-sub002/services/insight/signals"
)

// =============================================================================
// Stage 6: Health Laplacian
// =============================================================================

// stageHealthLaplacian computes delta_h, the local risk anomaly: how much
// a file's raw risk deviates from the mean of its graph neighborhood.
// A large positive delta_h marks a risk island inside otherwise calm
// surroundings, which a global ranking hides. Files with no neighbors
// deviate from nothing and score exactly 0.
//
// The reading is the graph Laplacian of the raw-risk field sampled at
// each node, over undirected adjacency. It deliberately uses the
// population-free raw risk so the anomaly is meaningful in every tier.
func (p *Pipeline) stageHealthLaplacian(ctx context.Context, st *runState) {
	for _, path := range st.field.FilePaths() {
		fs := st.field.Files[path]

		neighbors := st.g.Neighbors(path, graph.Undirected)
		if len(neighbors) == 0 {
			fs.Set(signals.DeltaH, 0)
			continue
		}

		var sum float64
		for _, n := range neighbors {
			sum += st.field.Files[n].MustGet(signals.RawRisk)
		}
		mean := sum / float64(len(neighbors))

		fs.Set(signals.DeltaH, fs.MustGet(signals.RawRisk)-mean)
	}
}
