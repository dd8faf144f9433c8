package main

import "github.com/azh05/Recapsule/cmd"

func main() {
	cmd.Execute()
}
