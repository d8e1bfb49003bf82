package main

import (
	"os"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := NewDefaultApp(VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	os.Exit(app.Run(os.Args[1:]))
}
