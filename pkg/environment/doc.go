// Package environment names the deployment environments the service runs in
// and normalizes the short aliases (dev, stage, prod) accepted in config.
//
//	env := environment.Parse(cfg.Env)
//	if env.IsDevelopment() {
//	    // write emails to disk instead of sending them
//	}
package environment
