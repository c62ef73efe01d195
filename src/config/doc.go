// Package config defines the configuration of a slow-control daemon.
//
// Every daemon takes a single configuration file. Files ending in .conf or
// .properties use the historical "key: value" format, for example:
//
//  nsm.host: 127.0.0.1
//  nsm.port: 8120
//  nsm.nodename: HVCTL
//  timeout: 5
//  log.level: info
//  db.dir: /var/lib/slc/config_db
//
// Other files (yaml, toml, json) are read by viper and use the same keys as
// nested sections. The result is unmarshalled into Config, whose zero fields
// keep their defaults (cf NewDefaultConfig).
package config
