// Package config loads the optional joestar.yaml file read by the joestar
// command.
//
// A missing file yields the defaults. Command-line flags are applied on top
// of whatever the file sets.
//
//	driver: browser
//	window:
//	  title: Demo
//	  width: 1024
//	  height: 768
//	browser:
//	  address: 127.0.0.1:8700
//	log:
//	  level: debug
//	  format: json
//	events:
//	  queue: 512
//	snapshot:
//	  dir: ./out
//	  s3:
//	    bucket: pages
//	    region: us-east-1
package config
