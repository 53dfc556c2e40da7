// Package config loads lazyroute.json, the configuration of a navigation
// engine instance.
//
// # Configuration File Structure
//
//	{
//	  "name": "bank",
//	  "routes": [
//	    {"path": "", "pathMatch": "full", "loaderId": "dashboard"},
//	    {"path": "account", "loaderId": "account"},
//	    {"path": "**", "pathMatch": "full", "redirectTo": ""}
//	  ],
//	  "bundles": {
//	    "source": "dir",
//	    "dir": "bundles",
//	    "fetchTimeout": "10s"
//	  },
//	  "scroll": {
//	    "restorePosition": true,
//	    "anchorScrolling": true,
//	    "store": "redis",
//	    "redis": {"addr": "localhost:6379", "ttl": "24h"}
//	  },
//	  "navigation": {"maxRedirects": 16, "timeout": "30s"},
//	  "server": {"host": "localhost", "port": 8080}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	routes, err := cfg.Table()
package config
