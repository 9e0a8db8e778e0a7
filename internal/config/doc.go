// Package config provides webshim's layered configuration.
//
// Configuration is built from three layers, higher layers overriding
// lower ones:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← WEBSHIM_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← webshim.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// Command line flags are applied by the caller with Set after Load.
//
// # Settings
//
//	input.selector    selector of the element the input device binds to
//	input.host        terminal, window, remote, script or headless
//	input.keyRelease  hold time before a terminal key is released
//	remote.listen     listen address of the remote input endpoint
//	logging.level     notice, error, warning, info or debug
//	logging.color     colored console output
//	fetch.timeout     default synchronous fetch timeout
//	fetch.corsProxy   prefix applied to cross-origin request URLs
//	trace.path        input trace file written while running
//	core.entry        exported function started by the runner
//
// # Usage
//
//	cfg := config.New(config.WithFile("webshim.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	in := cfg.Input()
//	fmt.Println(in.Selector)
package config
