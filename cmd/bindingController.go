package cmd

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Binding poll budget: every 5 seconds for up to 24 attempts (~120s).
const (
	bindPollInterval = 5 * time.Second
	bindPollAttempts = 24
)

// configureBinding applies spec to the client and waits for ypbind to come
// up bound. The restart's exit status is not gating; the poll decides. On
// exhaustion the client's bound flag stays false and dependent lookups are
// left to fail visibly.
func configureBinding(c *host, spec bindingSpec) bool {
	if !setBindingConfig(c, spec) {
		return false
	}
	c.bound = false
	if res := c.run(serviceRequest{action: "restart", unit: "ypbind"}, runOptions{}); !res.ok {
		log.WithField("host", c.role).Warn("ypbind restart reported failure; polling anyway")
	}
	for attempt := 1; attempt <= bindPollAttempts; attempt++ {
		res := c.run(bindingStatusRequest{}, runOptions{quiet: true})
		if res.ok && strings.TrimSpace(res.stdout) != "" {
			c.bound = true
			log.WithFields(log.Fields{"host": c.role, "attempt": attempt}).
				Infof("bound to %s", strings.TrimSpace(res.stdout))
			return true
		}
		if attempt < bindPollAttempts {
			sleepFunc(bindPollInterval)
		}
	}
	return false
}

// ensureBound rebinds with the default explicit-server spec unless the last
// binding attempt on this client already succeeded.
func ensureBound(ctx *runContext, c *host) bool {
	if c.bound {
		return true
	}
	return configureBinding(c, defaultBindingSpec(ctx.topo))
}
