// Package config loads spawn project configuration.
//
// Configuration lives in spawn.yaml (or spawn.json, spawn.toml) at the
// project root. Every key can be overridden from the environment with the
// SPAWN_ prefix, dots becoming underscores: SPAWN_SERVER_PORT=8080.
//
// # Configuration File Structure
//
//	render:
//	  pretty: true
//	  indent: "  "
//	  output: dist
//	  lang: en
//	server:
//	  host: localhost
//	  port: 3000
//	  live_reload: true
//	  watch: [styles]
//	  metrics: true
//	  tracing: false
//	publish:
//	  bucket: my-site
//	  prefix: site/
//	  region: eu-west-1
//	  concurrency: 4
//	  skip_unchanged: true
//	log:
//	  level: info
//	  format: text
//	cache:
//	  enabled: true
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Port:", cfg.Server.Port)
package config
