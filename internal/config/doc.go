// Package config loads and validates studio.json.
//
// A project directory is recognised by the presence of studio.json. Missing
// fields are filled with defaults, so an empty object is a valid file:
//
//	{
//	  "server":      {"host": "localhost", "port": 4100},
//	  "buildServer": {"url": "http://localhost:3001", "eventsPath": "/events"},
//	  "workspace":   {"dir": "workspace", "watch": true},
//	  "loader": {
//	    "entryFile": "App.js",
//	    "original":  {"s3": {"bucket": "apps", "prefix": "original/"}}
//	  },
//	  "preview": {"width": 375, "height": 812}
//	}
//
// Use FindProjectRoot to locate the file from a nested directory and
// LoadFromWorkingDir as the CLI entry point.
package config
