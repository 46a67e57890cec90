package growth

import (
	"github.com/sanonone/glyphgarden/pkg/metrics"
	"github.com/sanonone/glyphgarden/pkg/types"
)

// keepRatio is the share of each cap that survives a cleanup.
const keepRatio = 0.8

func keep(limit int) int { return int(float64(limit) * keepRatio) }

// PerformMemoryCleanup purges the oldest nodes once the arena reaches
// MaxNodes, keeping the newest 80%. Connections touching a purged node are
// dropped, the index is rebuilt from the survivors and the auxiliary logs are
// trimmed to 80% of their caps. Below MaxNodes only the logs are trimmed.
func (e *Engine) PerformMemoryCleanup() {
	before := e.nodes.len()
	if before >= e.maxNodes {
		dropped := e.nodes.keepNewest(keep(e.maxNodes))

		conns := e.connections[:0]
		for _, c := range e.connections {
			_, fromGone := dropped[c.From]
			_, toGone := dropped[c.To]
			if !fromGone && !toGone {
				conns = append(conns, c)
			}
		}
		e.connections = conns

		queue := e.queue[:0]
		for _, id := range e.queue {
			if _, gone := dropped[id]; !gone {
				queue = append(queue, id)
			}
		}
		e.queue = queue

		e.spatial.Clear()
		for _, n := range e.nodes.all() {
			e.spatial.Insert(n)
		}
		e.spatial.Cleanup()
	}

	e.connections = trimOldest(e.connections, keep(maxConnections))
	e.connKeys = make(map[[2]types.NodeID]struct{}, len(e.connections))
	for _, c := range e.connections {
		e.connKeys[c.Key()] = struct{}{}
	}
	e.trajectory = trimOldest(e.trajectory, keep(maxTrajectory))
	e.collocationFields = trimOldest(e.collocationFields, keep(maxCollocationFields))
	e.patterns = trimOldest(e.patterns, keep(maxPatterns))
	e.reflections = trimOldest(e.reflections, keep(maxReflections))

	metrics.MemoryCleanupsTotal.Inc()
	e.logger.Info("memory cleanup",
		"nodes_before", before,
		"nodes_after", e.nodes.len(),
		"connections", len(e.connections),
	)
	e.updateGauges()
}
