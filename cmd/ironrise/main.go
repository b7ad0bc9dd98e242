package main

import "github.com/oshokin/ironrise/cmd/ironrise/cmd"

func main() {
	cmd.Execute()
}
