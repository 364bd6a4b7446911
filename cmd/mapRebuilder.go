package cmd

import log "github.com/sirupsen/logrus"

// rebuildMap regenerates one map on the server and flushes the client's
// cached copy of it. Best effort: failures are logged, never fail the
// scenario. Call it after every change to a map's backing source, including
// record removals, to drive the system back toward the pre-test state.
func rebuildMap(ctx *runContext, mapName string) {
	if res := ctx.server.run(buildMapRequest{domain: ctx.topo.Domain, mapName: mapName}, runOptions{}); !res.ok {
		log.WithField("map", mapName).Warn("server map rebuild reported failure")
	}
	table := cacheTable(mapName)
	if res := ctx.client.run(invalidateCacheRequest{table: table}, runOptions{}); !res.ok {
		log.WithFields(log.Fields{"map": mapName, "table": table}).
			Info("client cache invalidation reported failure")
	}
}
