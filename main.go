package main

import "github.com/Justype/hpcmachines/cmd"

func main() {
	cmd.Execute()
}
