package main

import "github.com/daxreyes/bushfire-beacon/cmd/server/cmd"

func main() {
	cmd.Execute()
}
