// Command symcli is a command line front end to the symbol engine.
package main

import "log"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
