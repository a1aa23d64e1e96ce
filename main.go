package main

import "github.com/Rorical/RoriKB/cmd"

func main() {
	cmd.Execute()
}
