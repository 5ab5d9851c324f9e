package main

import "github.com/twiced-technology-gmbh/taskwatch/cmd"

func main() {
	cmd.Execute()
}
