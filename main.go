package main

import "gcpops/buildmedic/cmd"

func main() {
	cmd.Execute()
}
