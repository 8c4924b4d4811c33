package main

import "github.com/sarchlab/marchfault/cmd/marchfault/cmd"

func main() {
	cmd.Execute()
}
