package main

import "github.com/darmiel/rtcmint/cmd"

func main() {
	cmd.Execute()
}
