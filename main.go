package main

import "healthnudge/cmd"

func main() {
	cmd.Execute()
}
