package main

import "github.com/iliyamo/parking-spot-reservation/cmd/server/command"

func main() {
	command.Execute()
}
